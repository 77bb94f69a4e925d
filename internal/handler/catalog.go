package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/importer"
	"github.com/mmeshcher/rosario-store/internal/model"
)

type productRequest struct {
	Codigo         string  `json:"codigo"`
	Descripcion    string  `json:"descripcion"`
	UnidadMedida   string  `json:"unidadMedida"`
	Iva            string  `json:"iva"`
	PrecioUnitario float64 `json:"precioUnitario"`
	PrecioConIva   float64 `json:"precioConIva"`
	PrecioVenta    float64 `json:"precioVenta"`
	Proveedor      string  `json:"proveedor"`
	Categoria      string  `json:"categoria"`
}

type productResponse struct {
	ID             string  `json:"id"`
	Codigo         string  `json:"codigo"`
	Descripcion    string  `json:"descripcion"`
	UnidadMedida   string  `json:"unidadMedida"`
	Iva            string  `json:"iva"`
	PrecioUnitario float64 `json:"precioUnitario"`
	PrecioConIva   float64 `json:"precioConIva"`
	PrecioVenta    float64 `json:"precioVenta"`
	Proveedor      string  `json:"proveedor"`
	Categoria      string  `json:"categoria"`
	ImagenURL      string  `json:"imagenUrl"`
}

func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Codigo:         p.Codigo,
		Descripcion:    p.Descripcion,
		UnidadMedida:   p.UnidadMedida,
		Iva:            p.Iva,
		PrecioUnitario: p.PrecioUnitario,
		PrecioConIva:   p.PrecioConIva,
		PrecioVenta:    p.PrecioVenta,
		Proveedor:      p.Proveedor,
		Categoria:      p.Categoria,
		ImagenURL:      p.ImagenURL,
	}
}

// ListProducts возвращает каталог, отсортированный по коду товара.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list products error")
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// CreateProduct добавляет один товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p := &model.Product{
		Codigo:         req.Codigo,
		Descripcion:    req.Descripcion,
		UnidadMedida:   req.UnidadMedida,
		Iva:            req.Iva,
		PrecioUnitario: req.PrecioUnitario,
		PrecioConIva:   req.PrecioConIva,
		PrecioVenta:    req.PrecioVenta,
		Proveedor:      req.Proveedor,
		Categoria:      req.Categoria,
	}
	id, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, err, "create product error")
		return
	}
	p.ID = id

	h.writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// UpdateProduct перезаписывает редактируемые поля товара.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p := &model.Product{
		ID:             id,
		Codigo:         req.Codigo,
		Descripcion:    req.Descripcion,
		UnidadMedida:   req.UnidadMedida,
		Iva:            req.Iva,
		PrecioUnitario: req.PrecioUnitario,
		PrecioConIva:   req.PrecioConIva,
		PrecioVenta:    req.PrecioVenta,
		Proveedor:      req.Proveedor,
		Categoria:      req.Categoria,
	}
	if err := h.service.UpdateProduct(r.Context(), p); err != nil {
		h.handleServiceError(w, err, "update product error", zap.String("productID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProduct удаляет товар из каталога.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete product error", zap.String("productID", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importResponse struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// максимальный размер загружаемого файла импорта и изображения
const maxUploadSize = 32 << 20

// ImportProducts принимает XLSX-файл с прайс-листом и создаёт товары каталога.
func (h *Handler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := importer.Parse(file)
	if err != nil {
		h.logger.Warn("parse import file error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, importer.MapProduct(row))
	}

	report, err := h.service.ImportProducts(r.Context(), products)
	if err != nil {
		h.handleServiceError(w, err, "import products error")
		return
	}

	h.writeJSON(w, http.StatusOK, importResponse{Created: report.Created, Failed: report.Failed})
}

type imageResponse struct {
	ImagenURL string `json:"imagenUrl"`
}

// AttachProductImage принимает файл изображения и привязывает его к товару.
func (h *Handler) AttachProductImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	url, err := h.service.AttachProductImage(r.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		h.handleServiceError(w, err, "attach product image error", zap.String("productID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, imageResponse{ImagenURL: url})
}
