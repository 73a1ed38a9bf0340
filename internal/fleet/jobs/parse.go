package jobs

import (
	"regexp"
	"strings"
)

// fieldAliases maps normalized labels from pasted booking messages onto
// job field names. Unknown labels pass through unchanged.
var fieldAliases = map[string]string{
	"agent":            "customer_name",
	"agent_email":      "customer_email",
	"agent_mobile":     "customer_mobile",
	"service":          "type_of_service",
	"vehicle":          "vehicle_type",
	"vehicle_number":   "vehicle_number",
	"pickup":           "pickup_location",
	"drop":             "dropoff_location",
	"date":             "pickup_date",
	"time":             "pickup_time",
	"status":           "status",
	"passenger":        "passenger_name",
	"passenger_email":  "passenger_email",
	"passenger_mobile": "passenger_mobile",
	"reference":        "reference",
	"remarks":          "remarks",
	"message":          "message",
}

type fallbackPattern struct {
	field string
	re    *regexp.Regexp
}

// fallbackPatterns run only when no "field: value" lines were found.
// Order matters: each field takes its first match.
var fallbackPatterns = []fallbackPattern{
	{"customer_name", regexp.MustCompile(`(?i)Customer[:\-]?\s*([\w\s]+)`)},
	{"customer_email", regexp.MustCompile(`(?i)Email[:\-]?\s*([\w.\-]+@[\w.\-]+)`)},
	{"customer_mobile", regexp.MustCompile(`(?i)Mobile[:\-]?\s*(\d+)`)},
	{"type_of_service", regexp.MustCompile(`(?i)Service[:\-]?\s*([\w\s]+)`)},
	{"pickup_date", regexp.MustCompile(`(?i)Date[:\-]?\s*([\d\-/]+)`)},
	{"pickup_time", regexp.MustCompile(`(?i)Time[:\-]?\s*([\d:apmAPM\s]+)`)},
	{"pickup_location", regexp.MustCompile(`(?i)Pickup[:\-]?\s*([\w\s]+)`)},
	{"dropoff_location", regexp.MustCompile(`(?i)Drop[:\-]?\s*([\w\s]+)`)},
	{"vehicle_type", regexp.MustCompile(`(?i)Vehicle[:\-]?\s*([\w\s]+)`)},
	{"driver_contact", regexp.MustCompile(`(?i)Driver[:\-]?\s*([\w\s]+)`)},
	{"payment_status", regexp.MustCompile(`(?i)Payment[:\-]?\s*([\w\s]+)`)},
	{"order_status", regexp.MustCompile(`(?i)Status[:\-]?\s*([\w\s]+)`)},
}

// ParseMessage extracts job fields from a pasted free-text booking message.
// It first walks "field: value" lines, normalizing and aliasing the labels;
// if that yields nothing it falls back to labeled regex patterns over the
// whole message. Empty input yields an empty map. It never fails.
func ParseMessage(message string) map[string]string {
	data := make(map[string]string)

	for _, line := range strings.Split(message, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(line[:idx]))
		field = strings.ReplaceAll(field, " ", "_")
		value := strings.TrimSpace(line[idx+1:])
		if mapped, ok := fieldAliases[field]; ok {
			field = mapped
		}
		data[field] = value
	}

	if len(data) == 0 {
		for _, p := range fallbackPatterns {
			if m := p.re.FindStringSubmatch(message); m != nil {
				data[p.field] = strings.TrimSpace(m[1])
			}
		}
	}

	return data
}

// ApplyParsed copies recognized parsed fields onto a job.
func ApplyParsed(job *Job, data map[string]string) {
	for field, value := range data {
		switch field {
		case "customer_name":
			job.CustomerName = value
		case "customer_email":
			job.CustomerEmail = value
		case "customer_mobile":
			job.CustomerMobile = value
		case "customer_reference":
			job.CustomerReference = value
		case "passenger_name":
			job.PassengerName = value
		case "passenger_email":
			job.PassengerEmail = value
		case "passenger_mobile":
			job.PassengerMobile = value
		case "type_of_service":
			job.TypeOfService = value
		case "pickup_date":
			job.PickupDate = value
		case "pickup_time":
			job.PickupTime = value
		case "pickup_location":
			job.PickupLocation = value
		case "dropoff_location":
			job.DropoffLocation = value
		case "vehicle_type":
			job.VehicleType = value
		case "vehicle_number":
			job.VehicleNumber = value
		case "driver_contact":
			job.DriverContact = value
		case "payment_mode":
			job.PaymentMode = value
		case "payment_status":
			job.PaymentStatus = value
		case "order_status":
			job.OrderStatus = value
		case "status":
			job.Status = value
		case "reference":
			job.Reference = value
		case "remarks":
			job.Remarks = value
		case "message":
			job.Message = value
		case "additional_stops":
			job.AdditionalStops = value
		}
	}
}
