package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultTimeout bounds a single inference request.
const DefaultTimeout = 60 * time.Second

// HTTPDetector sends images to an external inference service.
//
// The service accepts a multipart form with the image as a PNG in the "file"
// field at POST <URL>/detect and answers with
//
//	{"instances": [{"class_id": 1, "score": 0.98, "mask_png": "<base64 PNG>"}]}
//
// GET <URL>/health answers 200 when the model is loaded.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector returns a detector for the service at baseURL. A zero
// timeout selects DefaultTimeout.
func NewHTTPDetector(baseURL string, timeout time.Duration) (*HTTPDetector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid inference URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid inference URL %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type wireInstance struct {
	ClassID int     `json:"class_id"`
	Score   float64 `json:"score"`
	MaskPNG string  `json:"mask_png"`
}

type wireResult struct {
	Instances []wireInstance `json:"instances"`
}

// Detect uploads img and decodes the returned instances.
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if err := imaging.Encode(part, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	endpoint, err := url.JoinPath(d.baseURL, "detect")
	if err != nil {
		return nil, fmt.Errorf("failed to build detect URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{Instances: make([]Instance, 0, len(wire.Instances))}
	for i, w := range wire.Instances {
		mask, err := decodeMask(w.MaskPNG)
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		if mask.Bounds().Size() != bounds.Size() {
			return nil, fmt.Errorf("instance %d: mask is %v, image is %v", i, mask.Bounds().Size(), bounds.Size())
		}
		result.Instances = append(result.Instances, Instance{
			Mask:    mask,
			ClassID: w.ClassID,
			Score:   w.Score,
		})
	}
	return result, nil
}

// Health reports whether the inference service is reachable and ready.
func (d *HTTPDetector) Health(ctx context.Context) error {
	endpoint, err := url.JoinPath(d.baseURL, "health")
	if err != nil {
		return fmt.Errorf("failed to build health URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func decodeMask(b64 string) (*image.Gray, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask base64: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask image: %w", err)
	}
	return toGray(img), nil
}

// toGray returns img as an origin-anchored *image.Gray.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return out
}
