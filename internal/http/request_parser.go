package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

var ErrBadParameter = errors.New("bad query parameter")

// ParseReportParams reads month, year, start_date and end_date over defaults.
// Unparsable or zero month and year values keep the default; range checks
// are left to the report service. Malformed dates are rejected with
// ErrBadParameter.
func ParseReportParams(query url.Values, defaults reports.Params) (reports.Params, error) {
	p := defaults

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m != 0 {
			p.Month = m
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y != 0 {
			p.Year = y
		}
	}

	var err error
	if p.Start, err = parseDateParam(query, "start_date", defaults.Start); err != nil {
		return p, err
	}
	if p.End, err = parseDateParam(query, "end_date", defaults.End); err != nil {
		return p, err
	}
	return p, nil
}

func parseDateParam(query url.Values, name string, fallback core.Date) (core.Date, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s: %w", ErrBadParameter, name, err)
	}
	return d, nil
}

// periodLabel names the period of a request in logs.
func periodLabel(kind reports.Kind, p reports.Params) string {
	switch kind {
	case reports.KindMonthly:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	case reports.KindYearly, reports.KindMonthlyExpenditure:
		return strconv.Itoa(p.Year)
	case reports.KindGoalAdherence, reports.KindCategoryDistribution:
		return p.Start.String() + ".." + p.End.String()
	}
	return ""
}
