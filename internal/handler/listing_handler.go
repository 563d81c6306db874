package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"locallisting/internal/models"
	"locallisting/internal/repository"
	"locallisting/internal/storage"
)

const dateLayout = "2006-01-02"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ListingRequest is the JSON body for create and update. Field rules live in the listing service.
type ListingRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	ListingType    *string          `json:"listingType"`
	Category       *string          `json:"category"`
	Subcategory    *string          `json:"subcategory"`
	Price          *looseString     `json:"price"`
	PriceType      *string          `json:"priceType"`
	Condition      *string          `json:"condition"`
	DeliveryOption *string          `json:"deliveryOption"`
	Location       *string          `json:"location"`
	EventDate      *looseString     `json:"eventDate"`
	ExistingImages []string         `json:"existingImages"`
}

// looseString keeps the text of a JSON string or number. Conversion errors become field errors.
type looseString string

func (v *looseString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = looseString(s)
		return nil
	}
	*v = looseString(data)
	return nil
}

func (v *looseString) value() *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

type StatusRequest struct {
	Status string `json:"status"`
}

type FavoriteResponse struct {
	Action  string          `json:"action"`
	Listing *models.Listing `json:"listing"`
}

// listingInput is a decoded create/update request, from JSON or multipart.
type listingInput struct {
	fields         repository.ListingFields
	existingImages []string
	manageImages   bool
	uploads        []storage.Upload
	files          []io.Closer
}

func (in *listingInput) close() {
	for _, f := range in.files {
		f.Close()
	}
}

func (req ListingRequest) toFields(fieldErrors map[string]string) repository.ListingFields {
	fields := repository.ListingFields{
		Title:          req.Title,
		Description:    req.Description,
		ListingType:    req.ListingType,
		CategoryID:     req.Category,
		SubcategoryID:  req.Subcategory,
		PriceType:      req.PriceType,
		Condition:      req.Condition,
		DeliveryOption: req.DeliveryOption,
		Location:       req.Location,
	}
	parsePriceAndDate(&fields, req.Price.value(), req.EventDate.value(), fieldErrors)
	return fields
}

// parsePriceAndDate converts the raw price and event date shared by the JSON and multipart bodies.
func parsePriceAndDate(fields *repository.ListingFields, price, eventDate *string, fieldErrors map[string]string) {
	if price != nil && *price != "" {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			fieldErrors["price"] = "A valid number is required."
		} else {
			fields.Price = &d
		}
	}

	if eventDate != nil && *eventDate != "" {
		t, err := parseDate(*eventDate)
		if err != nil {
			fieldErrors["eventDate"] = "Date has wrong format. Use YYYY-MM-DD or RFC 3339."
		} else {
			fields.EventDate = &t
		}
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, value)
}

// readListingInput decodes the request body. fileField names the multipart file part holding uploads.
func (h *Handlers) readListingInput(w http.ResponseWriter, r *http.Request, fileField string) (*listingInput, bool) {
	if !isMultipart(r) {
		var req ListingRequest
		if !h.decodeAndValidate(w, r, &req) {
			return nil, false
		}
		fieldErrors := map[string]string{}
		fields := req.toFields(fieldErrors)
		if len(fieldErrors) > 0 {
			WriteValidationError(w, fieldErrors)
			return nil, false
		}
		return &listingInput{
			fields:         fields,
			existingImages: req.ExistingImages,
			manageImages:   req.ExistingImages != nil,
		}, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("Request too large (max %d MB)", h.Cfg.MaxUploadSize/(1024*1024)),
				http.StatusRequestEntityTooLarge)
		} else {
			WriteError(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return nil, false
	}

	form := r.MultipartForm
	value := func(name string) *string {
		vals, ok := form.Value[name]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}

	in := &listingInput{
		fields: repository.ListingFields{
			Title:          value("title"),
			Description:    value("description"),
			ListingType:    value("listingType"),
			CategoryID:     value("category"),
			SubcategoryID:  value("subcategory"),
			PriceType:      value("priceType"),
			Condition:      value("condition"),
			DeliveryOption: value("deliveryOption"),
			Location:       value("location"),
		},
	}
	fieldErrors := map[string]string{}

	parsePriceAndDate(&in.fields, value("price"), value("eventDate"), fieldErrors)

	if ids, ok := form.Value["existingImages"]; ok {
		in.manageImages = true
		in.existingImages = []string{}
		for _, id := range ids {
			if id != "" {
				in.existingImages = append(in.existingImages, id)
			}
		}
	}

	for _, fh := range form.File[fileField] {
		in.manageImages = true

		contentType := fh.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			fieldErrors[fileField] = "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP."
			continue
		}

		file, err := fh.Open()
		if err != nil {
			in.close()
			WriteError(w, "Could not read uploaded file", http.StatusBadRequest)
			return nil, false
		}
		in.files = append(in.files, file)
		in.uploads = append(in.uploads, storage.Upload{
			FileName:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        file,
		})
	}

	if len(fieldErrors) > 0 {
		in.close()
		WriteValidationError(w, fieldErrors)
		return nil, false
	}

	return in, true
}

// listingFilter reads the list query string. It returns field errors for malformed values.
func listingFilter(r *http.Request) (repository.ListingFilter, map[string]string) {
	q := r.URL.Query()
	fieldErrors := map[string]string{}

	filter := repository.ListingFilter{
		Condition:      q.Get("condition"),
		DeliveryOption: q.Get("delivery_option"),
		ListingType:    q.Get("listing_type"),
		Location:       q.Get("location"),
		Search:         q.Get("search"),
		Ordering:       q.Get("ordering"),
	}

	for _, name := range []string{"min_price", "max_price"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fieldErrors[name] = "Enter a number."
			continue
		}
		if name == "min_price" {
			filter.MinPrice = &d
		} else {
			filter.MaxPrice = &d
		}
	}

	if raw := q.Get("category"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			fieldErrors["category"] = "Select a valid choice."
		} else {
			filter.CategoryID = raw
		}
	}
	if raw := q.Get("subcategory"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			fieldErrors["subcategory"] = "Select a valid choice."
		} else {
			filter.SubcategoryID = raw
		}
	}

	for _, name := range []string{"start_date", "end_date"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			fieldErrors[name] = "Enter a valid date."
			continue
		}
		if name == "start_date" {
			filter.StartDate = &t
		} else {
			filter.EndDate = &t
		}
	}

	for _, name := range []string{"page", "page_size"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fieldErrors[name] = "Enter a positive whole number."
			continue
		}
		if name == "page" {
			filter.Page = n
		} else {
			filter.PageSize = n
		}
	}

	return filter, fieldErrors
}

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	filter, fieldErrors := listingFilter(r)
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	page, err := h.ListingService.ListListings(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	in, ok := h.readListingInput(w, r, "images")
	if !ok {
		return
	}
	defer in.close()

	listing, err := h.ListingService.CreateListing(r.Context(), repository.CreateListingRequest{
		OwnerID: userID,
		Fields:  in.fields,
		Images:  in.uploads,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusCreated)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.ListingService.GetListing(r.Context(), listingID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

// UpdateListing serves PUT (full) and PATCH (partial).
func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	in, ok := h.readListingInput(w, r, "newImages")
	if !ok {
		return
	}
	defer in.close()

	listing, err := h.ListingService.UpdateListing(r.Context(), repository.UpdateListingRequest{
		ListingID:      listingID,
		UserID:         userID,
		Partial:        r.Method == http.MethodPatch,
		Fields:         in.fields,
		ManageImages:   in.manageImages,
		ExistingImages: in.existingImages,
		NewImages:      in.uploads,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) UpdateListingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	listing, err := h.ListingService.UpdateStatus(r.Context(), listingID, userID, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ListingService.DeleteListing(r.Context(), listingID, userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) MyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listings, err := h.ListingService.MyListings(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}

func (h *Handlers) FavoriteListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listings, err := h.ListingService.FavoriteListings(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	action, listing, err := h.ListingService.ToggleFavorite(r.Context(), listingID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, FavoriteResponse{Action: action, Listing: listing}, http.StatusOK)
}
