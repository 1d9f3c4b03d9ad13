package handlers

import (
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/authorization"
	"roombuddy/domain"
	"roombuddy/service"
)

type UserHandler struct {
	service   *application.UserService
	auth      *AuthMiddleware
	admin     mux.MiddlewareFunc
	responder *Responder
	tracer    trace.Tracer
}

func NewUserHandler(service *application.UserService, auth *AuthMiddleware, admin mux.MiddlewareFunc, responder *Responder, tracer trace.Tracer) *UserHandler {
	return &UserHandler{
		service:   service,
		auth:      auth,
		admin:     admin,
		responder: responder,
		tracer:    tracer,
	}
}

func (handler *UserHandler) Init(router *mux.Router) {
	router.HandleFunc("/users/register", handler.Register).Methods(http.MethodPost)
	router.HandleFunc("/users/login", handler.Login).Methods(http.MethodPost)
	router.Handle("/users/profile", handler.auth.Protect(http.HandlerFunc(handler.Profile))).Methods(http.MethodGet)
	router.Handle("/users/profile", handler.auth.Protect(http.HandlerFunc(handler.UpdateProfile))).Methods(http.MethodPut)
	router.Handle("/users", handler.auth.Protect(handler.admin(http.HandlerFunc(handler.GetAll)))).Methods(http.MethodGet)
}

func (handler *UserHandler) Register(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Register")
	defer span.End()

	var request domain.RegisterRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	resp, err := handler.service.Register(ctx, &request)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponseWithStatus(resp, http.StatusCreated, writer)
}

func (handler *UserHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Login")
	defer span.End()

	var request domain.LoginRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	resp, err := handler.service.Login(ctx, &request)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(resp, writer)
}

func (handler *UserHandler) Profile(writer http.ResponseWriter, req *http.Request) {
	_, span := handler.tracer.Start(req.Context(), "UserHandler.Profile")
	defer span.End()

	jsonResponse(authorization.UserFromContext(req.Context()), writer)
}

func (handler *UserHandler) UpdateProfile(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.UpdateProfile")
	defer span.End()

	var request domain.UpdateProfileRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	caller := authorization.UserFromContext(ctx)
	user, err := handler.service.UpdateProfile(ctx, caller.ID, &request)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(user, writer)
}

func (handler *UserHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.GetAll")
	defer span.End()

	users, err := handler.service.GetAll(ctx)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(users, writer)
}
