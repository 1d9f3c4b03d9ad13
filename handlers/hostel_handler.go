package handlers

import (
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/authorization"
	"roombuddy/domain"
	"roombuddy/service"
)

type HostelHandler struct {
	service   *application.HostelService
	auth      *AuthMiddleware
	responder *Responder
	tracer    trace.Tracer
}

func NewHostelHandler(service *application.HostelService, auth *AuthMiddleware, responder *Responder, tracer trace.Tracer) *HostelHandler {
	return &HostelHandler{
		service:   service,
		auth:      auth,
		responder: responder,
		tracer:    tracer,
	}
}

func (handler *HostelHandler) Init(router *mux.Router) {
	router.HandleFunc("/hostels", handler.Search).Methods(http.MethodGet)
	router.Handle("/hostels", handler.auth.Protect(http.HandlerFunc(handler.Create))).Methods(http.MethodPost)
	router.HandleFunc("/hostels/{id}", handler.Get).Methods(http.MethodGet)
	router.Handle("/hostels/{id}", handler.auth.Protect(http.HandlerFunc(handler.Update))).Methods(http.MethodPut)
	router.Handle("/hostels/{id}", handler.auth.Protect(http.HandlerFunc(handler.Delete))).Methods(http.MethodDelete)
	router.Handle("/hostels/{id}/reviews", handler.auth.Protect(http.HandlerFunc(handler.AddReview))).Methods(http.MethodPost)
}

func (handler *HostelHandler) Search(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.Search")
	defer span.End()

	params, err := hostelSearchParams(req)
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

func (handler *HostelHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.Get")
	defer span.End()

	hostel, err := handler.service.Get(ctx, mux.Vars(req)["id"])
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(hostel, writer)
}

func (handler *HostelHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.Create")
	defer span.End()

	var request domain.HostelRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	hostel, err := handler.service.Create(ctx, authorization.UserFromContext(ctx), &request)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponseWithStatus(hostel, http.StatusCreated, writer)
}

func (handler *HostelHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.Update")
	defer span.End()

	var update domain.HostelUpdate
	if err := decodeBody(req, &update); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	hostel, err := handler.service.Update(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"], &update)
	if err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(hostel, writer)
}

func (handler *HostelHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"]); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponse(MessageResponse{Message: "Hostel removed"}, writer)
}

func (handler *HostelHandler) AddReview(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "HostelHandler.AddReview")
	defer span.End()

	var request domain.ReviewRequest
	if err := decodeBody(req, &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	if err := handler.service.AddReview(ctx, authorization.UserFromContext(ctx), mux.Vars(req)["id"], &request); err != nil {
		handler.responder.Error(writer, req, span, err)
		return
	}
	jsonResponseWithStatus(MessageResponse{Message: "Review added"}, http.StatusCreated, writer)
}
