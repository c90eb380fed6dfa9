package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

// endOfTime bounds /prioritized when no "to" is given.
var endOfTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func (s *Server) handleList(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, toResponses(s.mgr.ListKind(kind)))
	}
}

func (s *Server) handleGet(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := s.mgr.GetKind(id, kind)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(item))
	}
}

// handleSave creates an item when the body has no id and updates the
// item of this kind otherwise.
func (s *Server) handleSave(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req itemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}

		if req.ID != 0 {
			p, err := req.patch()
			if err != nil {
				s.fail(c, err)
				return
			}
			item, err := s.mgr.UpdateKind(p, kind)
			if err != nil {
				s.fail(c, err)
				return
			}
			s.written(c, http.StatusOK, toResponse(item))
			return
		}

		d, err := req.draft()
		if err != nil {
			s.fail(c, err)
			return
		}
		var item model.Item
		switch kind {
		case model.KindTask:
			item, err = s.mgr.AddTask(d)
		case model.KindEpic:
			item, err = s.mgr.AddEpic(d)
		case model.KindSubtask:
			item, err = s.mgr.AddSubtask(d)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		s.written(c, http.StatusCreated, toResponse(item))
	}
}

func (s *Server) handleDelete(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := s.mgr.DeleteKind(id, kind)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.written(c, http.StatusOK, toResponse(item))
	}
}

func (s *Server) handleClear(kind model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.mgr.Clear(kind); err != nil {
			s.fail(c, err)
			return
		}
		s.written(c, http.StatusOK, gin.H{"cleared": kind})
	}
}

func (s *Server) handleEpicSubtasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponses(s.mgr.SubtasksOf(id)))
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, toResponses(s.mgr.History()))
}

// handlePrioritized lists timed items by start. Optional RFC3339 "from"
// and "to" query parameters restrict the result to starts in [from, to).
func (s *Server) handlePrioritized(c *gin.Context) {
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" && toStr == "" {
		c.JSON(http.StatusOK, toResponses(s.mgr.Prioritized()))
		return
	}

	from, to := time.Time{}, endOfTime
	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			s.fail(c, fmt.Errorf("%w: from: %v", errBadRequest, err))
			return
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			s.fail(c, fmt.Errorf("%w: to: %v", errBadRequest, err))
			return
		}
	}
	c.JSON(http.StatusOK, toResponses(s.mgr.PrioritizedBetween(from, to)))
}

// written runs the after-write hook before replying.
func (s *Server) written(c *gin.Context, code int, body any) {
	if s.afterWrite != nil {
		if err := s.afterWrite(); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(code, body)
}

var errBadRequest = errors.New("bad request")

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, manager.ErrNotFound), errors.Is(err, manager.ErrEpicNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, manager.ErrMissingID), model.IsInvalid(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid id %q", c.Param("id"))})
		return 0, false
	}
	return id, true
}
