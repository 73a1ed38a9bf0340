package chat

import (
	"regexp"
	"strings"
)

// Topic identifies which canned query family a chat message belongs to.
type Topic string

const (
	TopicJobs      Topic = "jobs"
	TopicDrivers   Topic = "drivers"
	TopicVehicles  Topic = "vehicles"
	TopicAgents    Topic = "agents"
	TopicServices  Topic = "services"
	TopicBilling   Topic = "billing"
	TopicPayment   Topic = "payment"
	TopicStatus    Topic = "status"
	TopicDashboard Topic = "dashboard"
	TopicHelp      Topic = "help"
	TopicUnknown   Topic = "unknown"
)

type classifierRule struct {
	topic Topic
	re    *regexp.Regexp
}

// classifierRules is an ordered dispatch table: the first matching rule
// wins, so "unpaid jobs" routes to jobs, not payment.
var classifierRules = []classifierRule{
	{TopicJobs, regexp.MustCompile(`\b(all\s+)?jobs?\b`)},
	{TopicDrivers, regexp.MustCompile(`\bdrivers?\b`)},
	{TopicVehicles, regexp.MustCompile(`\bvehicles?\b`)},
	{TopicAgents, regexp.MustCompile(`\bagents?\b`)},
	{TopicServices, regexp.MustCompile(`\bservices?\b`)},
	{TopicBilling, regexp.MustCompile(`\bbilling?\b`)},
	{TopicPayment, regexp.MustCompile(`\bpayment\b`)},
	{TopicStatus, regexp.MustCompile(`\bstatus\b`)},
	{TopicDashboard, regexp.MustCompile(`\b(dashboard|summary|overview)\b`)},
	{TopicHelp, regexp.MustCompile(`\b(help|what can you do)\b`)},
}

// Classify lowercases the message and walks the dispatch table in order.
func Classify(message string) Topic {
	message = strings.ToLower(strings.TrimSpace(message))
	for _, rule := range classifierRules {
		if rule.re.MatchString(message) {
			return rule.topic
		}
	}
	return TopicUnknown
}

func hasKeyword(message, keyword string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	return re.MatchString(strings.ToLower(message))
}
