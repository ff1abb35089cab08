package models

// CompletionResponse is the provider-neutral view of a responses-endpoint reply.
// OutputText is the flattened convenience text; nil means the provider reported none.
type CompletionResponse struct {
	OutputText *string
	Output     []CompletionOutputItem
}

// CompletionOutputItem is one output item of a completion.
type CompletionOutputItem struct {
	Content []CompletionContentBlock
}

// CompletionContentBlock is one content block of an output item.
type CompletionContentBlock struct {
	Text string
}
