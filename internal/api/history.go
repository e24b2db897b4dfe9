package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

const (
	queryParamLimit = "limit"
	defaultLimit    = 50
)

func (s *service) registerHistoryEndpoints(rest *echo.Echo) {
	group := rest.Group("/history")

	group.GET("/", s.getHistory)
}

// returns the most recent runs, newest first
func (s *service) getHistory(c echo.Context) error {
	if s.history == nil {
		return returnNotFound(c, "run history is disabled")
	}

	limit := defaultLimit
	err := echo.QueryParamsBinder(c).Int(queryParamLimit, &limit).BindError()
	if err != nil {
		return returnBadRequest(c, err)
	}

	runs, err := s.history.LoadRuns(limit)
	if err != nil {
		return returnError(c, err)
	}
	data := reprint.This(runs)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
