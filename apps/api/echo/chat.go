package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core/chat"
)

type chatApi struct {
	svc *chat.Service
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := chatApi{svc: opts.ChatSvc}

	cg := g.Group("/chat", jwt)
	cg.GET("/room/:courseId", api.room)
	cg.GET("/messages/:courseId", api.messages)
	cg.POST("/messages/:courseId", api.postMessage)
}

type (
	RoomResponse struct {
		Success      bool      `json:"success"`
		Room         chat.Room `json:"room"`
		Participants []string  `json:"participants"`
	}

	MessagesResponse struct {
		Success     bool           `json:"success"`
		Messages    []chat.Message `json:"messages"`
		TotalPages  int            `json:"totalPages"`
		CurrentPage int            `json:"currentPage"`
	}

	PostMessageResponse struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Sent    chat.Message `json:"sent"`
	}
)

// Handlers

func (api *chatApi) room(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.GetOrCreateRoom(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, RoomResponse{Success: true, Room: view.Room, Participants: view.Participants})
}

func (api *chatApi) messages(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var params struct {
		Page  int `query:"page"`
		Limit int `query:"limit"`
	}
	if err := ctx.Bind(&params); err != nil {
		return errors.Wrap(err, "binding pagination params")
	}

	page, err := api.svc.Messages(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"), params.Page, params.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessagesResponse{
		Success:     true,
		Messages:    page.Messages,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	})
}

func (api *chatApi) postMessage(ctx echo.Context) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	msg, err := api.svc.Post(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, PostMessageResponse{Success: true, Message: "Message sent.", Sent: msg})
}
