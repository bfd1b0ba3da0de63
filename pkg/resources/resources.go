// Package resources exposes the vendor's monitoring resource types as thin
// declarative descriptors over the signed client. Records are opaque JSON;
// each operation is the same request shape with a different path.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/monitorkit/lm-api-client/pkg/client"
	"github.com/monitorkit/lm-api-client/pkg/filter"
	"github.com/monitorkit/lm-api-client/pkg/logging"
)

// ErrNotFound is returned by point lookups that match no record.
var ErrNotFound = errors.New("no matching record")

// Resource is a declarative descriptor for one vendor resource type.
type Resource struct {
	// Name is the short resource name used in logs and errors.
	Name string

	// Path is the resource path under the API base URL.
	Path string
}

// Descriptors for the vendor's resource types.
var (
	DeviceGroups    = Resource{Name: "device-group", Path: "/device/groups"}
	Devices         = Resource{Name: "device", Path: "/device/devices"}
	Websites        = Resource{Name: "website", Path: "/website/websites"}
	WebsiteGroups   = Resource{Name: "website-group", Path: "/website/groups"}
	PropertySources = Resource{Name: "propertysource", Path: "/setting/propertysources"}
	ConfigSources   = Resource{Name: "configsource", Path: "/setting/configsources"}
	DataSources     = Resource{Name: "datasource", Path: "/setting/datasources"}
	AlertRules      = Resource{Name: "alert-rule", Path: "/setting/alert/rules"}
	Collectors      = Resource{Name: "collector", Path: "/setting/collector/collectors"}
	SDTs            = Resource{Name: "sdt", Path: "/sdt/sdts"}
)

// Format selects the response representation for detail fetches.
type Format string

const (
	// FormatJSON is the default representation.
	FormatJSON Format = "json"

	// FormatXML requests the XML representation. The body is returned as
	// raw bytes either way; the switch only changes what the server sends.
	FormatXML Format = "xml"
)

// Service performs resource operations through a signed client. Write
// payloads are validated before any request is sent.
type Service struct {
	client   *client.Client
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates a resource service on top of an API client.
func NewService(c *client.Client) *Service {
	return &Service{
		client:   c,
		validate: validator.New(),
		logger:   logging.NewLogger("lm-resources"),
	}
}

// List fetches every record of a resource type across all pages.
func (s *Service) List(ctx context.Context, r Resource) ([]json.RawMessage, error) {
	return s.client.GetAll(ctx, r.Path, nil, "")
}

// ListFiltered fetches every record matching the filter across all pages.
func (s *Service) ListFiltered(ctx context.Context, r Resource, f filter.Filter) ([]json.RawMessage, error) {
	return s.client.GetAll(ctx, r.Path, nil, rawFilter(f))
}

// Get fetches one record by its numeric ID.
func (s *Service) Get(ctx context.Context, r Resource, id int) (json.RawMessage, error) {
	body, err := s.client.Do(ctx, client.Request{
		Verb: http.MethodGet,
		Path: r.Path + "/" + strconv.Itoa(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", r.Name, id, err)
	}
	return json.RawMessage(body), nil
}

// Detail fetches one record by ID in the requested representation.
func (s *Service) Detail(ctx context.Context, r Resource, id int, format Format) ([]byte, error) {
	query := url.Values{}
	if format == FormatXML {
		query.Set("format", string(FormatXML))
	}

	body, err := s.client.Do(ctx, client.Request{
		Verb:  http.MethodGet,
		Path:  r.Path + "/" + strconv.Itoa(id),
		Query: query,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %d detail: %w", r.Name, id, err)
	}
	return body, nil
}

// FindByName looks up the record whose name field equals name. Exactly one
// request is issued regardless of the reported total; zero matches yield
// ErrNotFound, and the first match wins when the server reports several.
func (s *Service) FindByName(ctx context.Context, r Resource, name string) (json.RawMessage, error) {
	return s.FindByFilter(ctx, r, filter.Eq("name", name))
}

// FindByFilter is a point lookup through an arbitrary filter expression. One
// page is requested; the first matching record is returned.
func (s *Service) FindByFilter(ctx context.Context, r Resource, f filter.Filter) (json.RawMessage, error) {
	env, err := s.client.GetOne(ctx, r.Path, nil, rawFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.Name, err)
	}
	if len(env.Items) == 0 {
		return nil, fmt.Errorf("%s matching %s: %w", r.Name, f, ErrNotFound)
	}
	return env.Items[0], nil
}

// Create validates the payload and posts it as a new record. Validation
// failures abort before any request is sent.
func (s *Service) Create(ctx context.Context, r Resource, payload any) (json.RawMessage, error) {
	body, err := s.marshalPayload(r, payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, client.Request{
		Verb: http.MethodPost,
		Path: r.Path,
		Body: body,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.Name, err)
	}
	return json.RawMessage(resp), nil
}

// Update validates the payload and replaces the record with the given ID.
func (s *Service) Update(ctx context.Context, r Resource, id int, payload any) (json.RawMessage, error) {
	body, err := s.marshalPayload(r, payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, client.Request{
		Verb: http.MethodPut,
		Path: r.Path + "/" + strconv.Itoa(id),
		Body: body,
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.Name, id, err)
	}
	return json.RawMessage(resp), nil
}

// Delete removes the record with the given ID.
func (s *Service) Delete(ctx context.Context, r Resource, id int) error {
	_, err := s.client.Do(ctx, client.Request{
		Verb: http.MethodDelete,
		Path: r.Path + "/" + strconv.Itoa(id),
	})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.Name, id, err)
	}
	return nil
}

// marshalPayload validates and encodes a write payload.
func (s *Service) marshalPayload(r Resource, payload any) ([]byte, error) {
	if err := s.validate.Struct(payload); err != nil {
		s.logger.Warn().
			Err(err).
			Str("resource", r.Name).
			Msg("Payload rejected before request")
		return nil, &client.APIError{
			Class:   client.ErrorClassValidation,
			Message: fmt.Sprintf("invalid %s payload", r.Name),
			Err:     err,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &client.APIError{
			Class:   client.ErrorClassValidation,
			Message: fmt.Sprintf("encode %s payload", r.Name),
			Err:     err,
		}
	}
	return body, nil
}

// rawFilter renders a filter as a pre-encoded query component. The filter
// encoding table already percent-encodes its values, so the expression must
// reach the wire verbatim rather than pass through url.Values.
func rawFilter(f filter.Filter) string {
	if f.IsZero() {
		return ""
	}
	return "filter=" + f.String()
}
