package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/types"
)

const maxImageCount = 10

// ImageUpload is a single image file lifted out of a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PlaceForm is the decoded multipart body for place create/update.
type PlaceForm struct {
	Name            string
	Type            string
	Description     string
	Amenities       []string
	Location        *types.Location
	Reservable      bool
	ReservableHours types.ReservableHours
	Images          []ImageUpload
}

// DecodePlaceForm parses and validates the multipart place payload. Location
// and reservableHours arrive as JSON strings; malformed JSON is a validation
// error, not a server fault.
func DecodePlaceForm(r *http.Request, maxUploadMB int, requireImages bool) (*PlaceForm, error) {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	limit := int64(maxUploadMB) << 20
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	form := &PlaceForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Type:        strings.TrimSpace(r.FormValue("type")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	details := map[string]string{}
	if form.Name == "" {
		details["name"] = "is required"
	}
	if form.Type == "" {
		details["type"] = "is required"
	}

	if raw := strings.TrimSpace(r.FormValue("amenities")); raw != "" {
		form.Amenities = parseAmenities(raw)
	}

	if raw := strings.TrimSpace(r.FormValue("location")); raw == "" {
		details["location"] = "is required"
	} else {
		location, err := types.ParseLocation(raw)
		if err != nil {
			details["location"] = err.Error()
		} else {
			form.Location = location
		}
	}

	if raw := strings.TrimSpace(r.FormValue("reservable")); raw != "" {
		reservable, err := strconv.ParseBool(raw)
		if err != nil {
			details["reservable"] = "must be true or false"
		} else {
			form.Reservable = reservable
		}
	}

	if raw := strings.TrimSpace(r.FormValue("reservableHours")); raw != "" {
		hours, err := types.ParseReservableHours(raw)
		if err != nil {
			details["reservableHours"] = err.Error()
		} else {
			form.ReservableHours = hours
		}
	}

	images, imageErr := readImages(r.MultipartForm)
	if imageErr != "" {
		details["images"] = imageErr
	} else {
		form.Images = images
	}
	if requireImages && len(form.Images) == 0 && details["images"] == "" {
		details["images"] = "at least one image is required"
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return form, nil
}

// parseAmenities accepts either a JSON array of strings or a plain
// comma-joined value ("wifi,outlets").
func parseAmenities(raw string) []string {
	var amenities []string
	if err := json.Unmarshal([]byte(raw), &amenities); err != nil {
		amenities = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func readImages(form *multipart.Form) ([]ImageUpload, string) {
	if form == nil {
		return nil, ""
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, ""
	}
	if len(files) > maxImageCount {
		return nil, fmt.Sprintf("at most %d images allowed", maxImageCount)
	}

	uploads := make([]ImageUpload, 0, len(files))
	for _, header := range files {
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, fmt.Sprintf("file %q is not an image", header.Filename)
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Sprintf("file %q could not be read", header.Filename)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Sprintf("file %q could not be read", header.Filename)
		}
		uploads = append(uploads, ImageUpload{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return uploads, ""
}
