package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go-shop/models"
	"go-shop/store"
)

// ProductController handles product listing, search, detail and image upload.
type ProductController struct {
	Products  store.ProductStore
	UploadDir string
}

// NewProductController creates a new ProductController storing uploads under
// uploadDir.
func NewProductController(products store.ProductStore, uploadDir string) *ProductController {
	return &ProductController{Products: products, UploadDir: uploadDir}
}

// UploadImage stores a multipart image under the upload directory with a
// timestamp-prefixed filename and returns the path it will be served from.
func (pc *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "err": err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "err": err.Error()})
		return
	}
	defer file.Close()

	if err := os.MkdirAll(pc.UploadDir, 0o755); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "err": err.Error()})
		return
	}

	fileName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	filePath := filepath.Join(pc.UploadDir, fileName)

	dst, err := os.Create(filePath)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "err": err.Error()})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "err": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"filePath": filePath,
		"fileName": fileName,
	})
}

// CreateProduct stores a new product listing.
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, err)
		return
	}
	if product.Price < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "price must not be negative"})
		return
	}
	if utf8.RuneCountInString(product.Title) > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "title must be at most 50 characters"})
		return
	}
	if product.Continents == 0 {
		// Untagged products belong to the default category, so a
		// {continents: [1]} filter still selects them.
		product.Continents = 1
	}

	if err := pc.Products.Insert(r.Context(), &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type allProductsRequest struct {
	Skip       int64                `json:"skip"`
	Limit      int64                `json:"limit"`
	SearchTerm string               `json:"searchTerm"`
	Filters    map[string][]float64 `json:"filters"`
}

// buildSearchFilter maps the wire-level filters object onto the typed
// filter: a non-empty price list becomes an inclusive [min, max] range, a
// non-empty continents list becomes set-membership. Unknown keys and empty
// lists are ignored.
func buildSearchFilter(filters map[string][]float64) store.SearchFilter {
	var filter store.SearchFilter
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "price":
			priceRange := store.PriceRange{Min: values[0]}
			if len(values) > 1 {
				priceRange.Max = values[1]
			} else {
				priceRange.Max = values[0]
			}
			filter.Price = &priceRange
		case "continents":
			for _, v := range values {
				filter.Continents = append(filter.Continents, int(v))
			}
		}
	}
	return filter
}

// AllProducts returns one page of the filtered product search. postSize is
// the number of results on this page, which the client uses to decide
// whether a "load more" is worthwhile.
func (pc *ProductController) AllProducts(w http.ResponseWriter, r *http.Request) {
	var req allProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Skip < 0 {
		req.Skip = 0
	}

	products, err := pc.Products.Search(r.Context(), store.SearchQuery{
		Filter: buildSearchFilter(req.Filters),
		Term:   req.SearchTerm,
		Skip:   req.Skip,
		Limit:  req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"productInfo": products,
		"postSize":    len(products),
	})
}

// ProductDetail returns one or more products by id. With type=array the id
// parameter is a comma-delimited list; the response shape is an array either
// way. A single-product lookup also bumps the view counter.
func (pc *ProductController) ProductDetail(w http.ResponseWriter, r *http.Request) {
	queryType := r.URL.Query().Get("type")
	rawID := r.URL.Query().Get("id")
	if rawID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "id is required"})
		return
	}

	ids := []string{rawID}
	if queryType == "array" {
		ids = strings.Split(rawID, ",")
	}

	products, err := pc.Products.FindByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(ids) == 1 {
		// View counts are best-effort; a failed bump never fails the lookup.
		_ = pc.Products.IncViews(r.Context(), ids[0])
	}

	writeJSON(w, http.StatusOK, products)
}
