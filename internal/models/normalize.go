package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

// Normalize maps a raw listings record onto a JobRow. It never fails: any
// attribute that is absent, null or of an unusable type becomes None.
func Normalize(raw RawJob) JobRow {
	return JobRow{
		JobID:             stringField(raw.Get("id")),
		Title:             stringField(raw.Get("title")),
		Company:           stringField(raw.Get("company.display_name")),
		Category:          stringField(raw.Get("category.label")),
		LocationDisplay:   stringField(raw.Get("location.display_name")),
		City:              lastAreaField(raw.Get("location.area")),
		ContractType:      stringField(raw.Get("contract_type")),
		ContractTime:      stringField(raw.Get("contract_time")),
		Created:           stringField(raw.Get("created")),
		Description:       stringField(raw.Get("description")),
		RedirectURL:       stringField(raw.Get("redirect_url")),
		SalaryMin:         numberField(raw.Get("salary_min")),
		SalaryMax:         numberField(raw.Get("salary_max")),
		SalaryIsPredicted: flagField(raw.Get("salary_is_predicted")),
	}
}

func stringField(r gjson.Result) mo.Option[string] {
	switch r.Type {
	case gjson.String:
		return mo.Some(r.Str)
	case gjson.Number:
		// raw text keeps large numeric ids out of exponent notation
		return mo.Some(r.Raw)
	case gjson.True, gjson.False:
		return mo.Some(r.String())
	default:
		// missing, null, objects and arrays
		return mo.None[string]()
	}
}

func lastAreaField(r gjson.Result) mo.Option[string] {
	if !r.IsArray() {
		return mo.None[string]()
	}
	area := r.Array()
	if len(area) == 0 {
		return mo.None[string]()
	}
	return stringField(area[len(area)-1])
}

func numberField(r gjson.Result) mo.Option[float64] {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return mo.None[float64]()
		}
		v = parsed
	default:
		return mo.None[float64]()
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return mo.None[float64]()
	}
	return mo.Some(v)
}

func flagField(r gjson.Result) mo.Option[bool] {
	switch r.Type {
	case gjson.True:
		return mo.Some(true)
	case gjson.False:
		return mo.Some(false)
	case gjson.Number:
		return mo.Some(r.Num != 0)
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(r.Str))
		if err != nil {
			return mo.None[bool]()
		}
		return mo.Some(b)
	default:
		return mo.None[bool]()
	}
}
