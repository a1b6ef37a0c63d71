package message

import (
	"os"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"google.golang.org/protobuf/proto"
)

const (
	defaultVersion = "v1"
)

var (
	versionSegment = regexp.MustCompile(`^v[0-9]+$`)
)

// Kind distinguishes commands, queries and events.
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
	KindEvent   Kind = "event"
)

// Namer builds canonical names and topics for messages.
type Namer interface {
	Name(v any) string
	Topic(name string) string
	ServiceName() string
}

// ShortlinkNamer implements the {service}.{kind}.{name}.{version} convention.
type ShortlinkNamer struct {
	serviceName string
	version     string
}

// NewShortlinkNamer creates a namer bound to a service name.
func NewShortlinkNamer(serviceName string) *ShortlinkNamer {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = defaultServiceName()
	}
	return &ShortlinkNamer{
		serviceName: normalizeSegment(serviceName),
		version:     defaultVersion,
	}
}

// ServiceName returns configured service identifier.
func (n *ShortlinkNamer) ServiceName() string {
	return n.serviceName
}

// Name returns the fully qualified name of v.
func (n *ShortlinkNamer) Name(v any) string {
	comps := buildNameComponents(v, n.serviceName, string(KindOf(v)), n.version)
	return comps.String()
}

// Topic resolves the transport topic for a canonical name.
func (n *ShortlinkNamer) Topic(name string) string {
	return TopicFor(name)
}

// NameOf extracts fully qualified name using metadata or protobuf descriptors.
func NameOf(v any) string {
	return NewShortlinkNamer(defaultServiceName()).Name(v)
}

// TopicFor maps canonical name to a transport topic.
func TopicFor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// KindOf infers the message kind from metadata or the implemented interface.
func KindOf(v any) Kind {
	meta := metadataFromValue(v)
	if kind := meta[MetadataMessageKind]; kind != "" {
		switch {
		case strings.EqualFold(kind, string(KindEvent)):
			return KindEvent
		case strings.EqualFold(kind, string(KindQuery)):
			return KindQuery
		default:
			return KindCommand
		}
	}

	switch v.(type) {
	case Event:
		return KindEvent
	case Query:
		return KindQuery
	default:
		return KindCommand
	}
}

type nameComponents struct {
	Service string
	Kind    string
	Name    string
	Version string
}

func (c nameComponents) String() string {
	return strings.Join([]string{
		normalizeSegment(c.Service),
		normalizeSegment(c.Kind),
		normalizeSegment(c.Name),
		normalizeVersion(c.Version),
	}, ".")
}

func buildNameComponents(v any, fallbackService, fallbackKind, fallbackVersion string) nameComponents {
	comps := nameComponents{
		Service: fallbackService,
		Kind:    fallbackKind,
		Version: fallbackVersion,
	}

	meta := metadataFromValue(v)
	if service := meta[MetadataServiceName]; service != "" {
		comps.Service = service
	}
	if typeName := meta[MetadataTypeName]; typeName != "" {
		assignComponentsFromQualifiedName(&comps, typeName)
	}
	if version := meta[MetadataTypeVersion]; version != "" {
		comps.Version = version
	}

	if comps.Name == "" {
		if msg, ok := toProto(v); ok {
			assignComponentsFromProto(&comps, string(proto.MessageName(msg)))
		}
	}

	if comps.Name == "" {
		comps.Name = camelToSnake(typeNameOf(v))
	}

	return comps
}

func assignComponentsFromProto(c *nameComponents, full string) {
	if full == "" {
		return
	}
	parts := strings.Split(full, ".")

	c.Name = camelToSnake(parts[len(parts)-1])

	if len(parts) >= 3 && versionSegment.MatchString(parts[len(parts)-2]) {
		c.Version = parts[len(parts)-2]
	}
}

func assignComponentsFromQualifiedName(c *nameComponents, qualified string) {
	segments := strings.Split(qualified, ".")
	switch len(segments) {
	case 1:
		c.Name = segments[0]
	case 2:
		c.Kind = segments[0]
		c.Name = segments[1]
	default:
		c.Service = segments[0]
		c.Kind = segments[1]
		c.Name = segments[len(segments)-1]
	}
}

func camelToSnake(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func typeNameOf(v any) string {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func toProto(v any) (proto.Message, bool) {
	if v == nil {
		return nil, false
	}
	if msg, ok := v.(proto.Message); ok {
		return msg, true
	}
	return nil, false
}

func metadataFromValue(v any) map[string]string {
	switch meta := v.(type) {
	case wmmessage.Metadata:
		return meta
	case map[string]string:
		return meta
	case *wmmessage.Message:
		if meta == nil {
			return map[string]string{}
		}
		return meta.Metadata
	default:
		return map[string]string{}
	}
}

func normalizeSegment(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultVersion
	}
	return strings.ToLower(v)
}

func defaultServiceName() string {
	if svc := strings.TrimSpace(os.Getenv("SERVICE_NAME")); svc != "" {
		return strings.ToLower(svc)
	}
	return "shortlink"
}
