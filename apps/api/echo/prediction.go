package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/prediction"
)

type predictionApi struct {
	svc      *prediction.Service
	attSvc   *attendance.Service
	validate *validator.Validate
}

func registerPredictionAPI(g *echo.Group, svc *prediction.Service, attSvc *attendance.Service, validate *validator.Validate) {
	api := predictionApi{svc: svc, attSvc: attSvc, validate: validate}

	pg := g.Group("/predictions")
	pg.POST("/notify", api.notify)
}

type NotifyInput struct {
	TopN int `form:"top_n" validate:"required,min=1,max=100"`
}

func (api *predictionApi) notify(ctx echo.Context) error {
	var data NotifyInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NotifyInput")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a prediction file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening prediction file")
	}
	defer func() { _ = f.Close() }()

	preds, err := prediction.ParseTable(f)
	if err != nil {
		return err
	}
	roster, err := api.attSvc.Roster()
	if err != nil {
		return err
	}
	report, err := api.svc.NotifyTop(preds, roster, data.TopN)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}
