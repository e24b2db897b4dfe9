package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/persistence"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/markusressel/epfa/internal/util"
)

const (
	queryParamSpeed      = "speed"
	queryParamStartLayer = "startLayer"
	queryParamStrip      = "strip"
	queryParamName       = "name"
)

func (s *service) registerAdjustEndpoints(rest *echo.Echo) {
	group := rest.Group("/adjust")

	group.POST("/", s.adjust)
}

type adjustRequest struct {
	SpeedPercent float64
	StartLayer   int
	Strip        bool
	Name         string
}

func (s *service) parseAdjustRequest(c echo.Context) (request adjustRequest, err error) {
	request = adjustRequest{
		SpeedPercent: s.defaults.SpeedPercent,
		StartLayer:   s.defaults.StartLayer,
		Name:         "-",
	}

	if speed := c.QueryParam(queryParamSpeed); len(speed) > 0 {
		percent, err := configuration.ParsePercent(speed)
		if err != nil {
			return request, err
		}
		request.SpeedPercent = percent.Float()
	}

	err = echo.QueryParamsBinder(c).
		Int(queryParamStartLayer, &request.StartLayer).
		Bool(queryParamStrip, &request.Strip).
		String(queryParamName, &request.Name).
		BindError()
	if err != nil {
		return request, err
	}

	if request.StartLayer < 1 {
		return request, fmt.Errorf("%s: invalid value %d, must be >= 1", queryParamStartLayer, request.StartLayer)
	}
	return request, nil
}

// adjusts the G-code given in the request body and returns the result
func (s *service) adjust(c echo.Context) error {
	request, err := s.parseAdjustRequest(c)
	if err != nil {
		return returnBadRequest(c, err)
	}

	lines, err := util.SplitLines(c.Request().Body)
	if err != nil {
		s.statistics.Record(persistence.SourceApi, transducer.Result{}, err)
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			// e.g. body limit exceeded
			return httpErr
		}
		return returnError(c, err)
	}

	config := transducer.NewConfig(request.SpeedPercent, request.StartLayer)
	if len(s.defaults.Tag) > 0 {
		config.Tag = s.defaults.Tag
	}
	config.StripInjected = request.Strip

	result, err := transducer.Process(config, lines)
	s.statistics.Record(persistence.SourceApi, result, err)
	if err != nil {
		var malformed *transducer.MalformedFanCommandError
		if errors.As(err, &malformed) {
			return c.JSONPretty(http.StatusUnprocessableEntity, &Result{
				Name:    "Malformed fan command",
				Message: malformed.Error(),
			}, indentationChar)
		}
		return returnError(c, err)
	}

	s.recordHistory(request, config, result)

	header := c.Response().Header()
	header.Set(HeaderChanges, strconv.Itoa(result.Changes))
	header.Set(HeaderLayers, strconv.Itoa(result.Layers))
	header.Set(HeaderOverrideOpen, strconv.FormatBool(result.OverrideOpenAtEnd))
	header.Set(HeaderInjected, strconv.Itoa(result.InjectedSeen))
	return c.Blob(http.StatusOK, ContentTypeGcode, []byte(util.JoinLines(result.Lines)))
}

func (s *service) recordHistory(request adjustRequest, config transducer.Config, result transducer.Result) {
	if s.history == nil {
		return
	}
	record := persistence.RunRecord{
		Path:       request.Name,
		Time:       time.Now(),
		Speed:      request.SpeedPercent,
		TargetPwm:  config.TargetSpeed,
		StartLayer: config.StartLayer,
		Lines:      len(result.Lines),
		Layers:     result.Layers,
		Changes:    result.Changes,
		Stripped:   result.InjectedRemoved,
		Source:     persistence.SourceApi,
	}
	if _, err := s.history.SaveRun(record); err != nil {
		ui.Warning("Unable to save run history: %v", err)
	}
}
