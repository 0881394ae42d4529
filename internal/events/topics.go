package events

// Topic constants for domain events emitted by the pricing core.
const (
	TopicPricingCalculated = "pricing.calculated"
	TopicPricingFailed     = "pricing.failed"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicPricingCalculated,
		TopicPricingFailed,
	}
}
