package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plebguard/plebguard/internal/idgen"
	"github.com/plebguard/plebguard/internal/ipintel"
	"github.com/plebguard/plebguard/internal/metrics"
	"github.com/plebguard/plebguard/internal/publication"
	"github.com/plebguard/plebguard/internal/risk"
	"github.com/plebguard/plebguard/internal/traces"
)

// evaluateRequest is the challenge-request body. The publication inside has
// already been signature-verified and decrypted by the upstream boundary;
// this service trusts its author key.
type evaluateRequest struct {
	Publication *publication.Publication `json:"publication" binding:"required"`

	// IP is the client address as seen by the upstream terminator,
	// resolved through the IP intelligence provider when one is wired.
	IP string `json:"ip,omitempty"`

	// IPIntel lets callers that already resolved intelligence pass it
	// through instead.
	IPIntel *ipintel.Result `json:"ipIntel,omitempty"`
}

type evaluateResponse struct {
	Score       float64             `json:"score"`
	Tier        string              `json:"tier"`
	Factors     []risk.FactorResult `json:"factors"`
	Explanation string              `json:"explanation"`
	EvaluatedAt time.Time           `json:"evaluatedAt"`
}

// handleEvaluate scores one publication attempt and assigns a challenge tier.
// POST /api/v1/evaluate
func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain a publication",
		})
		return
	}
	if err := req.Publication.Validate(); err != nil {
		// A malformed publication here means the upstream verification
		// boundary is broken, not that the author is risky.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_publication",
			"message": err.Error(),
		})
		return
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "risk.evaluate",
		traces.AuthorKey(req.Publication.AuthorKey),
		traces.Subplebbit(req.Publication.SubplebbitAddress),
		traces.PublicationType(string(req.Publication.Type)),
	)
	defer span.End()

	intel := req.IPIntel
	if intel == nil && s.ipProvider != nil && req.IP != "" {
		resolved, err := s.ipProvider.Lookup(ctx, req.IP)
		if err != nil {
			s.logger.Warn("ip intelligence lookup failed", "error", err)
		} else {
			intel = resolved
		}
	}

	now := time.Now()
	ec := &risk.EvalContext{
		Publication:          req.Publication,
		Now:                  now.Unix(),
		IPIntelAvailable:     s.cfg.IPIntelAvailable,
		IPIntel:              intel,
		History:              s.histSvc,
		OAuthBaseCredibility: s.cfg.OAuthProviders,
	}

	result, err := s.engine.Evaluate(ctx, ec, nil)
	if err != nil {
		if errors.Is(err, publication.ErrNoPayload) || errors.Is(err, publication.ErrNoAuthorKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_publication",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "evaluation_failed",
			"message": "Risk evaluation failed",
		})
		return
	}

	tier := s.mapper.Map(result.Score)
	span.SetAttributes(traces.Score(result.Score), traces.Tier(string(tier)))

	metrics.EvaluationsTotal.WithLabelValues(string(tier)).Inc()
	metrics.RiskScore.Observe(result.Score)
	for _, f := range result.Factors {
		if f.Weight == 0 {
			metrics.FactorSkipsTotal.WithLabelValues(f.Name).Inc()
		}
	}

	// Best-effort bookkeeping: log the publication so age and velocity
	// accrue, and persist the outcome for audit. Neither failure affects
	// the response.
	pub := *req.Publication
	eval := &risk.Evaluation{
		ID:                idgen.WithPrefix("eval_"),
		AuthorKey:         pub.AuthorKey,
		SubplebbitAddress: pub.SubplebbitAddress,
		Type:              pub.Type,
		Score:             result.Score,
		Tier:              string(tier),
		Factors:           result.Factors,
		Explanation:       result.Explanation,
		EvaluatedAt:       now,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.histSvc.RecordPublication(ctx, &pub, now); err != nil {
			s.logger.Warn("failed to record publication", "error", err)
		}
		if err := s.evalStore.Record(ctx, eval); err != nil {
			s.logger.Warn("failed to record evaluation", "error", err)
		}
	}()

	c.JSON(http.StatusOK, evaluateResponse{
		Score:       result.Score,
		Tier:        string(tier),
		Factors:     result.Factors,
		Explanation: result.Explanation,
		EvaluatedAt: now,
	})
}

// handleListEvaluations returns recent audit entries for one author.
// GET /api/v1/evaluations/:authorKey?limit=20
func (s *Server) handleListEvaluations(c *gin.Context) {
	authorKey := c.Param("authorKey")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be an integer between 1 and 100",
			})
			return
		}
		limit = parsed
	}

	evals, err := s.evalStore.ListByAuthor(c.Request.Context(), authorKey, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": "Failed to list evaluations",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evals})
}
