package shared

import "strings"

// Source names the system a record originates from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceBitrix24 Source = "bitrix24"
	Source1C       Source = "1c"
)

// IsValid checks if the source is known
func (s Source) IsValid() bool {
	switch s {
	case SourceManual, SourceBitrix24, Source1C:
		return true
	}
	return false
}

// ExternalRef links a local record to its counterpart in an external system.
// Among records of one kind, (ExternalID, Source) is unique when ExternalID is set.
type ExternalRef struct {
	ExternalID string
	Source     Source
}

// ManualRef is the reference of a record entered by hand.
func ManualRef() ExternalRef {
	return ExternalRef{Source: SourceManual}
}

// NewExternalRef builds a reference, trimming the id.
func NewExternalRef(externalID string, source Source) (ExternalRef, error) {
	externalID = strings.TrimSpace(externalID)
	if !source.IsValid() {
		return ExternalRef{}, NewDomainError("INVALID_SOURCE", "Source must be one of bitrix24, 1c, manual")
	}
	if len(externalID) > 100 {
		return ExternalRef{}, NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot exceed 100 characters")
	}
	return ExternalRef{ExternalID: externalID, Source: source}, nil
}

// IsLinked reports whether the record carries an external id.
func (r ExternalRef) IsLinked() bool {
	return r.ExternalID != ""
}
