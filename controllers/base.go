package controllers

import (
	"errors"
	"reflect"
	"stock-app/apperror"
	"stock-app/middleware"
	"stock-app/report"
	"stock-app/services"
	"stock-app/utils"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON body into out and runs the struct validation.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperror.Validation("invalid request body", nil)
	}
	return validateStruct(out)
}

// parseOptionalBody is parseBody for endpoints whose body may be empty.
func parseOptionalBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return validateStruct(out)
	}
	return parseBody(ctx, out)
}

func validateStruct(out interface{}) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		fields[fe.Field()] = tag
		names = append(names, fe.Field())
	}
	return apperror.Validation("invalid fields: "+strings.Join(names, ", "), fields)
}

func actorOf(ctx *fiber.Ctx) (services.Actor, error) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return services.Actor{}, apperror.Auth("authentication required")
	}
	return services.ActorFromUser(user), nil
}

func respond(ctx *fiber.Ctx, status int, message string, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation(name+" must be a positive integer", map[string]string{name: "numeric"})
	}
	return uint(id), nil
}

func queryUint(ctx *fiber.Ctx, key string) (*uint, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperror.Validation(key+" must be a positive integer", map[string]string{key: "numeric"})
	}
	id := uint(v)
	return &id, nil
}

func queryBool(ctx *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Validation(key+" must be true or false", map[string]string{key: "boolean"})
	}
	return &v, nil
}

func queryDate(ctx *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, apperror.Validation(key+" must be YYYY-MM-DD", map[string]string{key: "date"})
	}
	return &t, nil
}

func queryPage(ctx *fiber.Ctx) (int, int) {
	return utils.NormalizePage(ctx.QueryInt("page", utils.DefaultPage), ctx.QueryInt("per_page", utils.DefaultPerPage))
}

// sendWorkbook streams a spreadsheet as an attachment.
func sendWorkbook(ctx *fiber.Ctx, w *report.Workbook, name string) error {
	filename := name + "_" + time.Now().UTC().Format("20060102_150405") + ".xlsx"
	ctx.Set(fiber.HeaderContentType, report.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	_, err := w.WriteTo(ctx.Response().BodyWriter())
	return err
}
