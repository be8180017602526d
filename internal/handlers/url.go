package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/nmarks/kurz/internal/messaging"
	"github.com/nmarks/kurz/internal/shortener"
	"github.com/nmarks/kurz/internal/visits"
	"go.uber.org/zap"
)

// URLHandler handles short URL operations.
type URLHandler struct {
	shortener    *shortener.Shortener
	resolver     *shortener.Resolver
	visitStore   visits.Store
	baseURL      string
	publishVisit messaging.Publish[visits.VisitOccurredEvent]
	logger       *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	svc *shortener.Shortener,
	resolver *shortener.Resolver,
	visitStore visits.Store,
	baseURL string,
	publishVisit messaging.Publish[visits.VisitOccurredEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		shortener:    svc,
		resolver:     resolver,
		visitStore:   visitStore,
		baseURL:      baseURL,
		publishVisit: publishVisit,
		logger:       logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for visit tracking.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	code, err := h.shortener.Shorten(ctx, shortener.ShortenRequest{
		OriginalURL: req.Body.URL,
		Tags:        req.Body.Tags,
		ValidSince:  req.Body.ValidSince,
		ValidUntil:  req.Body.ValidUntil,
		CustomSlug:  req.Body.CustomSlug,
		MaxVisits:   req.Body.MaxVisits,
	})
	if err != nil {
		return nil, h.translateShortenError(req.Body.URL, err)
	}

	fullShortURL := fmt.Sprintf("%s/%s", h.baseURL, code)

	resp := &CreateShortURLResponse{}
	resp.Headers.Location = fullShortURL
	resp.Body.ShortCode = string(code)
	resp.Body.ShortURL = fullShortURL
	resp.Body.OriginalURL = req.Body.URL

	return resp, nil
}

func (h *URLHandler) translateShortenError(url string, err error) error {
	var (
		urlErr   *shortener.InvalidURLError
		aliasErr *shortener.InvalidSlugError
		slugErr  *shortener.NonUniqueSlugError
	)

	switch {
	case errors.As(err, &urlErr):
		return huma.Error400BadRequest(fmt.Sprintf("url %q did not respond", urlErr.URL))
	case errors.As(err, &aliasErr):
		return huma.Error400BadRequest(fmt.Sprintf("custom slug %q contains no usable characters", aliasErr.Slug))
	case errors.As(err, &slugErr):
		return huma.Error409Conflict(fmt.Sprintf("slug %q is already in use", slugErr.Slug))
	default:
		h.logger.Error("failed to create short url",
			zap.String("originalUrl", url),
			zap.Error(err),
		)

		return huma.Error500InternalServerError("failed to create short url")
	}
}

func (h *URLHandler) ResolveShortURL(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	shortURL, err := h.resolver.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.translateResolveError(req.Code, err)
	}

	resp := &ResolveResponse{}
	resp.Body.ShortCode = string(shortURL.Code)
	resp.Body.ShortURL = fmt.Sprintf("%s/%s", h.baseURL, shortURL.Code)
	resp.Body.OriginalURL = shortURL.OriginalURL
	resp.Body.ValidSince = shortURL.ValidSince
	resp.Body.ValidUntil = shortURL.ValidUntil
	resp.Body.MaxVisits = shortURL.MaxVisits
	resp.Body.Tags = shortURL.Tags
	resp.Body.CreatedAt = shortURL.CreatedAt

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.resolver.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.translateResolveError(req.Code, err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &visits.VisitOccurredEvent{
		Code:       string(shortURL.Code),
		Referer:    meta.Referrer,
		RemoteAddr: meta.ClientIP,
		UserAgent:  meta.UserAgent,
		VisitedAt:  time.Now(),
	}

	if err := h.publishVisit(event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusMovedPermanently,
	}
	resp.Headers.Location = shortURL.OriginalURL

	return resp, nil
}

func (h *URLHandler) translateResolveError(code string, err error) error {
	var (
		codeErr  *shortener.InvalidShortCodeError
		notFound *shortener.NotFoundError
	)

	switch {
	case errors.As(err, &codeErr):
		h.logger.Warn("short code with invalid format", zap.String("code", code))

		return huma.Error400BadRequest(fmt.Sprintf("short code %q has an invalid format", code))
	case errors.As(err, &notFound):
		return huma.Error404NotFound(fmt.Sprintf("no url found for short code %q", code))
	default:
		h.logger.Error("failed to resolve short code",
			zap.String("code", code),
			zap.Error(err),
		)

		return huma.Error500InternalServerError("failed to resolve short code")
	}
}

func (h *URLHandler) ListVisits(ctx context.Context, req *ListVisitsRequest) (*ListVisitsResponse, error) {
	dateRange, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	found, err := h.visitStore.List(ctx, req.Code, dateRange)
	if err != nil {
		h.logger.Error("failed to list visits",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to list visits")
	}

	resp := &ListVisitsResponse{}
	resp.Body.Visits = make([]VisitRecord, 0, len(found))

	for _, visit := range found {
		record := VisitRecord{
			Referer:    visit.Referer,
			VisitedAt:  visit.VisitedAt,
			RemoteAddr: visit.RemoteAddr,
			UserAgent:  visit.UserAgent,
		}

		if visit.Location != nil {
			record.Location = &VisitLocation{
				CountryCode: visit.Location.CountryCode,
				CityName:    visit.Location.CityName,
				Latitude:    visit.Location.Latitude,
				Longitude:   visit.Location.Longitude,
			}
		}

		resp.Body.Visits = append(resp.Body.Visits, record)
	}

	return resp, nil
}

func parseDateRange(start, end string) (visits.DateRange, error) {
	var dateRange visits.DateRange

	if start != "" {
		since, err := parseDate(start)
		if err != nil {
			return dateRange, fmt.Errorf("invalid startDate %q: expected RFC 3339 or YYYY-MM-DD", start)
		}

		dateRange.Since = &since
	}

	if end != "" {
		until, err := parseDate(end)
		if err != nil {
			return dateRange, fmt.Errorf("invalid endDate %q: expected RFC 3339 or YYYY-MM-DD", end)
		}

		dateRange.Until = &until
	}

	return dateRange, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", value)
}
