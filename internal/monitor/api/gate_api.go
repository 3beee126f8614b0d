package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printyx/printyx-monitor/internal/monitor/service/gate"
)

// GetGate points the transition's gate at the requested record and returns its
// view. A new record id re-triggers a check; repeating the same id does not.
func (api *Api) GetGate(c *gin.Context) {
	transitionType := c.Param("transitionType")
	recordID := c.Param("recordID")
	g := api.deps.Gates.Ensure(transitionType, recordID)
	c.JSON(http.StatusOK, g.Snapshot())
}

// RecheckGate re-runs validation for a failed gate. Outside the failed state
// the request is rejected so a double-click cannot queue duplicate checks.
func (api *Api) RecheckGate(c *gin.Context) {
	g, ok := api.gateFor(c)
	if !ok {
		return
	}
	if err := g.Recheck(); err != nil {
		if errors.Is(err, gate.ErrNotFailed) {
			c.JSON(http.StatusConflict, errorBody("NOT_FAILED", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

// DismissGate collapses the gate's rendering. The underlying result is kept,
// so a later record change still behaves as if nothing was dismissed.
func (api *Api) DismissGate(c *gin.Context) {
	g, ok := api.gateFor(c)
	if !ok {
		return
	}
	g.Dismiss()
	c.JSON(http.StatusOK, g.Snapshot())
}

// gateFor resolves the gate named by the path and verifies it is currently
// pointed at the requested record. Mutating a gate that has moved on to a
// different record would act on the wrong subject.
func (api *Api) gateFor(c *gin.Context) (*gate.Gate, bool) {
	transitionType := c.Param("transitionType")
	recordID := c.Param("recordID")

	g, ok := api.deps.Gates.Lookup(transitionType)
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("GATE_NOT_FOUND", "no gate for transition "+transitionType))
		return nil, false
	}
	if _, current := g.Subject(); current != recordID {
		c.JSON(http.StatusConflict, errorBody("SUBJECT_MISMATCH", "gate is tracking a different record"))
		return nil, false
	}
	return g, true
}
