package models

import (
	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

// RawJob represents one unvalidated entry of the listings API "results" array
type RawJob = gjson.Result

// JobRow represents a normalized job posting. A None field means the source
// record did not carry that attribute, which is different from an empty string.
type JobRow struct {
	JobID             mo.Option[string]
	Title             mo.Option[string]
	Company           mo.Option[string]
	Category          mo.Option[string]
	LocationDisplay   mo.Option[string]
	City              mo.Option[string]
	ContractType      mo.Option[string]
	ContractTime      mo.Option[string]
	Created           mo.Option[string]
	Description       mo.Option[string]
	RedirectURL       mo.Option[string]
	SalaryMin         mo.Option[float64]
	SalaryMax         mo.Option[float64]
	SalaryIsPredicted mo.Option[bool]
}

// Column names of a persisted JobRow, in file order
const (
	ColJobID             = "job_id"
	ColTitle             = "title"
	ColCompany           = "company"
	ColCategory          = "category"
	ColLocationDisplay   = "location_display"
	ColCity              = "city"
	ColContractType      = "contract_type"
	ColContractTime      = "contract_time"
	ColCreated           = "created"
	ColDescription       = "description"
	ColRedirectURL       = "redirect_url"
	ColSalaryMin         = "salary_min"
	ColSalaryMax         = "salary_max"
	ColSalaryIsPredicted = "salary_is_predicted"
)

// Columns lists every JobRow column in the order they are written
var Columns = []string{
	ColJobID,
	ColTitle,
	ColCompany,
	ColCategory,
	ColLocationDisplay,
	ColCity,
	ColContractType,
	ColContractTime,
	ColCreated,
	ColDescription,
	ColRedirectURL,
	ColSalaryMin,
	ColSalaryMax,
	ColSalaryIsPredicted,
}

// HasRequiredFields reports whether the row carries both a title and a description
func (r JobRow) HasRequiredFields() bool {
	return r.Title.IsPresent() && r.Description.IsPresent()
}
