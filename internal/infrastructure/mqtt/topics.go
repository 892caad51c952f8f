package mqtt

import (
	"fmt"
	"strings"
	"unicode"
)

// Topic prefixes for the ETS export service.
//
// All topics live under graylogic/ets so they sit beside the rest of the
// Gray Logic hierarchy without colliding with bridge or core topics.
const (
	// TopicPrefixETS is the base for all ETS export topics.
	TopicPrefixETS = "graylogic/ets"

	// defaultProjectSlug is used when a project name has no usable characters.
	defaultProjectSlug = "project"
)

// Topics provides builders for ETS export MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.ExportCompleted("Villa Nova")
//	// Returns: "graylogic/ets/export/villa-nova"
type Topics struct{}

// ExportCompleted returns the topic an export event is published on.
//
// Example: graylogic/ets/export/villa-nova
func (Topics) ExportCompleted(project string) string {
	return fmt.Sprintf("%s/export/%s", TopicPrefixETS, ProjectSlug(project))
}

// ServiceStatus returns the retained online/offline status topic.
//
// Example: graylogic/ets/status
func (Topics) ServiceStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixETS)
}

// AllExports returns a pattern matching export events of every project.
//
// Pattern: graylogic/ets/export/+
func (Topics) AllExports() string {
	return fmt.Sprintf("%s/export/+", TopicPrefixETS)
}

// ProjectSlug turns a project name into a single topic level: lower case,
// runs of anything other than letters and digits collapsed to '-'. MQTT
// wildcards and separators therefore never reach the topic.
func ProjectSlug(project string) string {
	var b strings.Builder
	dash := false

	for _, r := range strings.ToLower(project) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return defaultProjectSlug
	}
	return slug
}
