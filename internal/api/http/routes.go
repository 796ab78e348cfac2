package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/resolver"
	"github.com/i474232898/campusbot/internal/temperature"
)

var validate = validator.New()

// Deps are the collaborators behind the HTTP handlers. Temperatures may be nil.
type Deps struct {
	Resolver     *resolver.Resolver
	Answers      *answers.Store
	Temperatures resolver.Temperatures
	Logger       *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "campusbot",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/ask", func(c *fiber.Ctx) error {
		var req askRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		mode := resolver.SingleShot
		if req.Interactive {
			mode = resolver.Interactive
		}
		r := deps.Resolver.With(resolver.WithMode(mode), resolver.WithAllAnswers(req.AllAnswers))
		return c.JSON(render(r.Resolve(c.UserContext(), req.Question)))
	})

	v1.Post("/ask/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}

		sel, ok := deps.Resolver.Selection(req.Category)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown category")
		}
		resp, err := deps.Resolver.Select(sel, req.Choice)
		if err != nil {
			if errors.Is(err, resolver.ErrInvalidSelection) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return err
		}
		return c.JSON(render(resp))
	})

	v1.Get("/temperature/average", func(c *fiber.Ctx) error {
		var q averageQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		if deps.Temperatures == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "temperature log is not configured")
		}

		w := temperature.ParseWindow(q.Window)
		avg, ok := deps.Temperatures.Average(w)
		out := fiber.Map{"window": w.Name, "available": ok}
		if ok {
			out["average"] = avg
		}
		return c.JSON(out)
	})

	v1.Get("/temperature/compare", func(c *fiber.Ctx) error {
		if deps.Temperatures == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "temperature log is not configured")
		}
		deltas := deps.Temperatures.Compare()
		return c.JSON(fiber.Map{
			"days":  deltas,
			"table": temperature.ComparisonTable(deltas),
		})
	})

	v1.Get("/answers", func(c *fiber.Ctx) error {
		q := c.Query("question")
		if q == "" {
			return c.JSON(fiber.Map{"questions": deps.Answers.Questions()})
		}
		list, err := deps.Answers.Lookup(q)
		if err != nil {
			if errors.Is(err, answers.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "question not found")
			}
			return err
		}
		return c.JSON(fiber.Map{"question": q, "answers": list})
	})

	v1.Post("/answers", func(c *fiber.Ctx) error {
		var req addAnswerRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := deps.Answers.Add(req.Question, req.Answer); err != nil {
			deps.Logger.Error("add answer failed", zap.String("question", req.Question), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store answer")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"question": req.Question, "answer": req.Answer})
	})

	v1.Delete("/answers", func(c *fiber.Ctx) error {
		var q removeQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}

		var (
			removed bool
			err     error
		)
		if q.Answer != "" {
			removed, err = deps.Answers.RemoveAnswer(q.Question, q.Answer)
		} else {
			removed, err = deps.Answers.RemoveQuestion(q.Question)
		}
		if err != nil {
			deps.Logger.Error("remove answer failed", zap.String("question", q.Question), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store answers")
		}
		if !removed {
			return fiber.NewError(fiber.StatusNotFound, "question or answer not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

type askRequest struct {
	Question    string `json:"question" validate:"required"`
	Interactive bool   `json:"interactive"`
	AllAnswers  bool   `json:"all_answers"`
}

type selectRequest struct {
	Category string `json:"category" validate:"required"`
	Choice   string `json:"choice" validate:"required"`
}

type addAnswerRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type averageQuery struct {
	Window string `query:"window" validate:"omitempty,oneof=morning afternoon all"`
}

type removeQuery struct {
	Question string `query:"question" validate:"required"`
	Answer   string `query:"answer"`
}

// askResponse carries the structured response plus its printable form.
type askResponse struct {
	resolver.Response
	Rendered string `json:"rendered"`
}

func render(r resolver.Response) askResponse {
	return askResponse{Response: r, Rendered: r.String()}
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
