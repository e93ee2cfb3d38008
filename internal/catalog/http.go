package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ProductBoard/pkg/kit"
)

const (
	maxBodyBytes = 100 << 10

	msgNotFound = "Product not found"
	msgDeleted  = "Product deleted successfully"
)

type operation struct {
	name    string
	failMsg string
}

var (
	opCreate = operation{name: "create", failMsg: "Failed to add the product"}
	opUpdate = operation{name: "update", failMsg: "Failed to update the product"}
	opDelete = operation{name: "delete", failMsg: "Failed to delete the product"}
)

var (
	errBadBody     = errors.New("undecodable request body")
	errNotAnObject = errors.New("request body is not a JSON object")
	errTrailing    = errors.New("trailing data after JSON body")
)

var statusOK = map[string]string{"status": "ok"}

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *kit.Metrics

	// StrictNumbers turns a non-numeric price, quantity or id into a 400
	// instead of a NULL column.
	StrictNumbers bool
}

// Routes returns a standalone router serving only the product endpoints.
func (s *Server) Routes(writeMW ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)
	s.Register(r, writeMW...)
	return r
}

// Register adds the product and probe routes to r. writeMW wraps only the
// mutating routes.
func (s *Server) Register(r chi.Router, writeMW ...func(http.Handler) http.Handler) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, statusOK)
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.log().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
		kit.WriteJSON(w, http.StatusOK, statusOK)
	})

	r.Get("/products", s.list)
	r.Group(func(wr chi.Router) {
		wr.Use(writeMW...)
		wr.Post("/products", s.create)
		wr.Put("/products", s.update)
		wr.Delete("/products/{id}", s.delete)
	})
}

// productReq keeps each field as sent so it can be echoed back.
type productReq struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Name        json.RawMessage `json:"name,omitempty"`
	Price       json.RawMessage `json:"price,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	Quantity    json.RawMessage `json:"quantity,omitempty"`
}

func (p productReq) echo() productReq {
	return productReq{
		ID:          echoValue(p.ID),
		Name:        echoValue(p.Name),
		Price:       echoValue(p.Price),
		Description: echoValue(p.Description),
		Quantity:    echoValue(p.Quantity),
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.log().Error("list products failed", s.errFields(r, err)...)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	if products == nil {
		products = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductReq(w, r)
	if err != nil {
		s.fail(w, r, opCreate, err)
		return
	}

	in, err := s.productInput(req)
	if err != nil {
		s.fail(w, r, opCreate, err)
		return
	}

	id, err := s.Store.Insert(r.Context(), in)
	if err != nil {
		s.fail(w, r, opCreate, err)
		return
	}

	s.Metrics.ObserveWrite(opCreate.name, "ok")
	req.ID = json.RawMessage(strconv.FormatInt(id, 10))
	kit.WriteJSON(w, http.StatusCreated, req.echo())
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductReq(w, r)
	if err != nil {
		s.fail(w, r, opUpdate, err)
		return
	}

	in, err := s.productInput(req)
	if err != nil {
		s.fail(w, r, opUpdate, err)
		return
	}

	id := intValue(req.ID)
	if !id.Valid {
		if s.StrictNumbers {
			s.fail(w, r, opUpdate, errNotANumber)
			return
		}
		s.notFound(w, r, opUpdate)
		return
	}

	n, err := s.Store.Update(r.Context(), id.Int64, in)
	if err != nil {
		s.fail(w, r, opUpdate, err)
		return
	}
	if n == 0 {
		s.notFound(w, r, opUpdate)
		return
	}

	s.Metrics.ObserveWrite(opUpdate.name, "ok")
	kit.WriteJSON(w, http.StatusOK, req.echo())
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntPrefix(chi.URLParam(r, "id"))
	if !ok {
		if s.StrictNumbers {
			s.fail(w, r, opDelete, errNotANumber)
			return
		}
		s.notFound(w, r, opDelete)
		return
	}

	n, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, r, opDelete, err)
		return
	}
	if n != 1 {
		s.notFound(w, r, opDelete)
		return
	}

	s.Metrics.ObserveWrite(opDelete.name, "ok")
	kit.WriteMessage(w, http.StatusOK, msgDeleted)
}

func (s *Server) productInput(req productReq) (ProductInput, error) {
	name, err := textValue(req.Name)
	if err != nil {
		return ProductInput{}, err
	}
	desc, err := textValue(req.Description)
	if err != nil {
		return ProductInput{}, err
	}

	in := ProductInput{
		Name:        name,
		Price:       floatValue(req.Price),
		Quantity:    intValue(req.Quantity),
		Description: desc,
	}
	if s.StrictNumbers && (!in.Price.Valid || !in.Quantity.Valid) {
		return ProductInput{}, errNotANumber
	}
	return in, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op operation, err error) {
	s.log().Error(op.name+" product failed", s.errFields(r, err)...)
	s.Metrics.ObserveWrite(op.name, "failed")
	kit.WriteError(w, r, http.StatusBadRequest, op.failMsg)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, op operation) {
	s.Metrics.ObserveWrite(op.name, "not_found")
	kit.WriteError(w, r, http.StatusNotFound, msgNotFound)
}

func (s *Server) errFields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Error(err),
	}
	if code := ErrorCode(err); code != "" {
		fields = append(fields, zap.String("db_code", code))
	}
	return fields
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// decodeProductReq reads a JSON or form-encoded body. Any other content type
// yields an empty request, so every field is absent.
func decodeProductReq(w http.ResponseWriter, r *http.Request) (productReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return decodeJSONReq(r.Body)
	case mediaType == "application/x-www-form-urlencoded":
		return decodeFormReq(r)
	default:
		return productReq{}, nil
	}
}

// decodeJSONReq accepts exactly one JSON object. An empty body leaves every
// field absent.
func decodeJSONReq(body io.Reader) (productReq, error) {
	dec := json.NewDecoder(body)

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return productReq{}, nil
		}
		return productReq{}, errors.Join(errBadBody, err)
	}
	if fields == nil {
		return productReq{}, errors.Join(errBadBody, errNotAnObject)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return productReq{}, errors.Join(errBadBody, errTrailing)
	}

	return productReq{
		ID:          fields["id"],
		Name:        fields["name"],
		Price:       fields["price"],
		Description: fields["description"],
		Quantity:    fields["quantity"],
	}, nil
}

func decodeFormReq(r *http.Request) (productReq, error) {
	if err := r.ParseForm(); err != nil {
		return productReq{}, errors.Join(errBadBody, err)
	}

	field := func(key string) json.RawMessage {
		if _, ok := r.PostForm[key]; !ok {
			return nil
		}
		b, _ := json.Marshal(r.PostForm.Get(key))
		return b
	}

	return productReq{
		ID:          field("id"),
		Name:        field("name"),
		Price:       field("price"),
		Description: field("description"),
		Quantity:    field("quantity"),
	}, nil
}
