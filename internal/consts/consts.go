package consts

const (
	Ground        = "GND" // Reference node, always index 0 and 0 V
	CommentMarker = "#"   // Strips the rest of a line

	DirectiveStart = ".circuit"
	DirectiveEnd   = ".end"

	ShortPrefix = "V_zero_" // Name prefix of 0 V sources standing in for 0 ohm resistors
)
