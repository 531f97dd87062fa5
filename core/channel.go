package core

import "fmt"

// ChannelID identifies a Mini-SEED channel by the tuple
// (network, station, location, channel). Quality is deliberately excluded:
// it participates in priority, not identity.
type ChannelID struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

// String renders the identity as NET_STA_LOC_CHAN, the form used for
// regex identifier matching (with quality appended by the caller when needed).
func (c ChannelID) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", c.Network, c.Station, c.Location, c.Channel)
}

// WithQuality renders NET_STA_LOC_CHAN_QUAL as used by matchRegex/rejectRegex.
func (c ChannelID) WithQuality(q Quality) string {
	return fmt.Sprintf("%s_%c", c.String(), byte(q))
}

// Equal reports whether two channel identities are the same tuple.
func (c ChannelID) Equal(other ChannelID) bool {
	return c == other
}
