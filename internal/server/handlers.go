package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omegabonobo/greedy-room-scheduler/api/v1alpha1"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/assigner"
	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
)

// RoomsResponse lists the configured inventory.
type RoomsResponse struct {
	Rooms      []v1alpha1.RoomSpec    `json:"rooms"`
	SpaceTypes []assigner.TypeSummary `json:"spaceTypes"`
}

// Health responds with a generic OK payload for readiness/liveness usage.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Rooms returns the configured inventory and its per-type summary.
func (s *Server) Rooms(c *gin.Context) {
	inv := s.global.GetInventory()
	resp := RoomsResponse{
		Rooms:      make([]v1alpha1.RoomSpec, inv.Len()),
		SpaceTypes: assigner.SummarizeInventory(inv),
	}
	for i, room := range inv.Rooms {
		resp.Rooms[i] = v1alpha1.FromRoom(room)
	}
	c.JSON(http.StatusOK, resp)
}

// GetSchedule returns a recent result by run ID.
func (s *Server) GetSchedule(c *gin.Context) {
	result, ok := s.results.Get(c.Param("runId"))
	if !ok {
		c.JSON(http.StatusNotFound, v1alpha1.ErrorResponse{Code: v1alpha1.CodeNotFound, Message: "no such run"})
		return
	}
	c.JSON(http.StatusOK, v1alpha1.NewScheduleResult(result))
}

// Schedule runs one scheduling request.
func (s *Server) Schedule(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	var req v1alpha1.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.Join(optimizer.ErrMalformedInput, err))
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(c, err)
		return
	}
	requests, err := req.ToCore()
	if err != nil {
		s.fail(c, err)
		return
	}
	inv := s.global.GetInventory()
	if len(req.Rooms) > 0 {
		if inv, err = req.Inventory(); err != nil {
			s.fail(c, err)
			return
		}
	}

	strategyName, spec, err := s.resolve(&req)
	if err != nil {
		s.fail(c, errors.Join(optimizer.ErrMalformedInput, err))
		return
	}
	strategy, err := assigner.ParseStrategy(strategyName)
	if err != nil {
		s.fail(c, errors.Join(optimizer.ErrMalformedInput, err))
		return
	}
	a, err := s.newAssigner(strategy, &spec)
	if err != nil {
		s.fail(c, errors.Join(optimizer.ErrMalformedInput, err))
		return
	}

	start := time.Now()
	result, err := a.Assign(ctx, inv, requests)
	s.metrics.ObserveRun(strategy.String(), result, err, time.Since(start))
	if err != nil {
		logger.Info("Scheduling run failed", "strategy", strategy.String(), "error", err.Error())
		s.fail(c, err)
		return
	}
	s.results.Set(result)
	c.JSON(http.StatusOK, v1alpha1.NewScheduleResult(result))
}

// resolve computes the strategy and spec of a request from the live configuration:
// configured base, then the named profile, then inline weights.
func (s *Server) resolve(req *v1alpha1.ScheduleRequest) (string, config.OptimizerSpec, error) {
	spec, err := s.global.OptimizerSpec(req.Profile)
	if err != nil {
		return "", spec, err
	}
	spec = req.Weights.Apply(spec)

	strategy := req.Strategy
	if strategy == "" {
		strategy = s.global.GetConfig().Strategy
	}
	return strategy, spec, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), v1alpha1.NewErrorResponse(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, optimizer.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, optimizer.ErrInfeasibleModel):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
