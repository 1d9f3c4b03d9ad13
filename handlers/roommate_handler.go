package handlers

import (
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/authorization"
	"roombuddy/domain"
	"roombuddy/service"
)

type RoommateHandler struct {
	service   *application.RoommateService
	auth      *AuthMiddleware
	responder *Responder
	tracer    trace.Tracer
}

func NewRoommateHandler(service *application.RoommateService, auth *AuthMiddleware, responder *Responder, tracer trace.Tracer) *RoommateHandler {
	return &RoommateHandler{
		service:   service,
		auth:      auth,
		responder: responder,
		tracer:    tracer,
	}
}

func (handler *RoommateHandler) Init(router *mux.Router) {
	router.HandleFunc("/roommates", handler.Search).Methods(http.MethodGet)
	router.Handle("/roommates", handler.auth.Protect(http.HandlerFunc(handler.Create))).Methods(http.MethodPost)
	router.Handle("/roommates/{id}", handler.auth.Identify(http.HandlerFunc(handler.Get))).Methods(http.MethodGet)
	router.Handle("/roommates/{id}", handler.auth.Protect(http.HandlerFunc(handler.Update))).Methods(http.MethodPut)
	router.Handle("/roommates/{id}", handler.auth.Protect(http.HandlerFunc(handler.Delete))).Methods(http.MethodDelete)
}

func (handler *RoommateHandler) Search(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoommateHandler.Search")
	defer span.End()

	params, err := roommateSearchParams(req)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	page, err := handler.service.Search(ctx, params)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(page, writer)
}

func (handler *RoommateHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoommateHandler.Get")
	defer span.End()

	roommate, err := handler.service.Get(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"])
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(roommate, writer)
}

func (handler *RoommateHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoommateHandler.Create")
	defer span.End()

	var request domain.RoommateRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	roommate, err := handler.service.Create(ctx, authorization.UserFromContext(ctx), &request)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponseWithStatus(roommate, http.StatusCreated, writer)
}

func (handler *RoommateHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoommateHandler.Update")
	defer span.End()

	var update domain.RoommateUpdate
	if err := decodeBody(req, &update); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	roommate, err := handler.service.Update(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"], &update)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(roommate, writer)
}

func (handler *RoommateHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoommateHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"]); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(MessageResponse{Message: "Roommate profile removed"}, writer)
}
