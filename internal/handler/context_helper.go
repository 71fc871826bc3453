package handler

import (
	"fmt"
	"math"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

// filterFromQuery binds q, type, types, start and end. types may repeat or be
// comma separated.
func filterFromQuery(c *gin.Context) (models.EventFilter, error) {
	var query dto.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return models.EventFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}

	filter := models.EventFilter{Search: strings.TrimSpace(query.Search)}
	if query.Type != "" {
		t, err := parseEventType(query.Type)
		if err != nil {
			return filter, err
		}
		filter.Type = t
	}
	for _, raw := range query.Types {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			t, err := parseEventType(part)
			if err != nil {
				return filter, err
			}
			filter.Types = append(filter.Types, t)
		}
	}

	var err error
	if filter.From, err = optionalDate(query.Start, "start"); err != nil {
		return filter, err
	}
	if filter.To, err = optionalDate(query.End, "end"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "end must not be before start")
	}
	return filter, nil
}

func parseEventType(raw string) (models.EventType, error) {
	for _, known := range models.EventTypes {
		if strings.EqualFold(string(known), strings.TrimSpace(raw)) {
			return known, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown event type "+raw)
}

func optionalDate(raw, name string) (*dateutil.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := dateutil.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, name+" must be YYYY-MM-DD")
	}
	return &d, nil
}

// maxPageSize bounds pageSize on list endpoints.
const maxPageSize = 500

// maxPage keeps (page-1)*pageSize within int range.
const maxPage = math.MaxInt32 / maxPageSize

// pageFromQuery returns nil when the request does not ask for paging.
func pageFromQuery(c *gin.Context) (*models.Pagination, error) {
	var query dto.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	if query.PageSize == 0 && query.Page == 0 {
		return nil, nil
	}
	if query.PageSize < 0 || query.Page < 0 || query.PageSize > maxPageSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "page and pageSize must be positive and pageSize at most 500")
	}
	if query.Page > maxPage {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page must be at most %d", maxPage))
	}
	page := &models.Pagination{Page: query.Page, PageSize: query.PageSize}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PageSize == 0 {
		page.PageSize = 50
	}
	return page, nil
}
