package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

var nowFunc = time.Now // mockable

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance")
	ag.POST("/scans", api.scan)
	ag.POST("/sweep", api.sweep)
	ag.GET("/today", api.today)
	ag.GET("/roster", api.roster)
}

type ScanInput struct {
	CardID string `json:"card_id" validate:"required"`
}

// Handlers

func (api *attendanceApi) scan(ctx echo.Context) error {
	var data ScanInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScanInput")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := api.svc.Mark(data.CardID, nowFunc())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) sweep(ctx echo.Context) error {
	res, err := api.svc.Sweep(nowFunc())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) today(ctx echo.Context) error {
	now := nowFunc()
	events, err := api.svc.Today(now)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"date":    now.Format(attendance.DateFormat),
		"count":   len(events),
		"records": events,
	})
}

func (api *attendanceApi) roster(ctx echo.Context) error {
	roster, err := api.svc.Roster()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roster.Students())
}
