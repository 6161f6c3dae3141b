package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tama/internal/errors"
)

// envelope is the {success, message, data?} wrapper §6 requires on every
// response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(200, envelope{Success: true, Message: "ok", Data: data})
}

func fail(c *gin.Context, err error) {
	status := apperrors.GetHTTPStatus(err)
	c.JSON(status, envelope{Success: false, Message: err.Error()})
}

// resolveMonths expands the months/quarter/year query parameters §6
// describes into the concrete "YYYY-MM" list an Aggregator call needs.
// `months` is a comma-separated explicit list; `quarter`+`year` expands to
// that quarter's three months; `year` alone expands to every month of that
// year present in knownMonths (the store's current month list).
func resolveMonths(c *gin.Context, knownMonths []string) []string {
	if raw := c.Query("months"); raw != "" {
		var out []string
		for _, m := range strings.Split(raw, ",") {
			m = strings.TrimSpace(m)
			if m != "" {
				out = append(out, m)
			}
		}
		return out
	}

	year := c.Query("year")
	quarter := c.Query("quarter")

	if year != "" && quarter != "" {
		q, err := strconv.Atoi(quarter)
		if err != nil || q < 1 || q > 4 {
			return nil
		}
		startMonth := (q-1)*3 + 1
		var out []string
		for i := 0; i < 3; i++ {
			out = append(out, formatYearMonth(year, startMonth+i))
		}
		return out
	}

	if year != "" {
		var out []string
		for _, m := range knownMonths {
			if strings.HasPrefix(m, year+"-") {
				out = append(out, m)
			}
		}
		return out
	}

	return knownMonths
}

func formatYearMonth(year string, month int) string {
	t := time.Date(atoiOr(year, 0), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return t.Format("2006-01")
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
