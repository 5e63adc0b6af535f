package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsedKind identifies which notification channel family a ParsedInput
// came from.
type ParsedKind int

const (
	ParsedUnknown ParsedKind = iota
	ParsedStandard
	ParsedDetailed
)

// ParsedInput is the result of splitting a raw (channel, payload) pair on
// its channel prefix and, for the detailed family, its payload fields.
// It performs no table lookup and carries no dispatch semantics.
type ParsedInput struct {
	Kind       ParsedKind
	Key        string
	Originator string // detailed only
	EventName  string
	EventArg   string // detailed only; empty when the payload has no second ':'
}

// ChannelPrefixes returns the standard and detailed keyspace-notification
// channel prefixes for the given database index.
func ChannelPrefixes(dbIndex int) (standard, detailed string) {
	return fmt.Sprintf("__keyspace@%d__:", dbIndex), fmt.Sprintf("__keyspace_detailed@%d__:", dbIndex)
}

// ParseChannelPayload implements the parse() operation of the keyspace
// notification listener: determine the channel family by literal prefix
// match, strip the prefix to recover the key, and for the detailed family
// split the payload into originator / event name / event arg.
func ParseChannelPayload(channel, payload string, dbIndex int) ParsedInput {
	standardPrefix, detailedPrefix := ChannelPrefixes(dbIndex)

	if strings.HasPrefix(channel, detailedPrefix) {
		key := channel[len(detailedPrefix):]
		originator, eventName, eventArg := splitDetailedPayload(payload)
		return ParsedInput{
			Kind:       ParsedDetailed,
			Key:        key,
			Originator: originator,
			EventName:  eventName,
			EventArg:   eventArg,
		}
	}

	if strings.HasPrefix(channel, standardPrefix) {
		return ParsedInput{
			Kind:      ParsedStandard,
			Key:       channel[len(standardPrefix):],
			EventName: payload,
		}
	}

	return ParsedInput{Kind: ParsedUnknown}
}

// splitDetailedPayload splits a detailed-channel payload into at most three
// pieces on ':'. The remainder (event arg) retains any embedded ':'
// characters verbatim. Malformed payloads (fewer than two fields) still
// yield a best-effort originator so the self-filter can run; the missing
// event name simply fails every table lookup and is ignored.
func splitDetailedPayload(payload string) (originator, eventName, eventArg string) {
	parts := strings.SplitN(payload, ":", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	case 1:
		return parts[0], "", ""
	default:
		return "", "", ""
	}
}

// EventKind tags the mutation a parsed notification maps to.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventExpired
	EventDeleted
	EventExpire
	EventRenamed
	EventStringSet
	EventStringMutated
	EventHashFieldChanged
	EventSetMemberRemoved
	EventSortedSetMemberChanged
	EventSortedSetRangeByScoreRemoved
	EventSortedSetRangeInvalidated
)

// Exclude mirrors the remote store's endpoint-exclusion convention for a
// score range: which of the two endpoints, if any, are exclusive.
type Exclude int

const (
	ExcludeNone Exclude = iota
	ExcludeStart
	ExcludeStop
	ExcludeBoth
)

// Event is the strongly-typed result of applying the invalidation table to
// a ParsedInput. Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind
	Key  string

	NewKey      string // EventRenamed
	Field       string // EventHashFieldChanged
	MemberToken string // EventSetMemberRemoved

	ZMemberToken int64 // EventSortedSetMemberChanged

	RangeStart float64 // EventSortedSetRangeByScoreRemoved
	RangeStop  float64
	Exclude    Exclude
}

// ClassifyStandard maps a standard-channel event name onto an Event. Only
// "expired" is tabulated on this channel; anything else — including names
// that ARE tabulated on the detailed channel — is ignored here, matching
// the listener's standard-event branch.
func ClassifyStandard(key, eventName string) Event {
	if eventName == "expired" {
		return Event{Kind: EventExpired, Key: key}
	}
	return Event{Kind: EventIgnored, Key: key}
}

// ClassifyDetailed maps a detailed-channel (event name, event arg) pair
// onto an Event per the invalidation table. Malformed arguments drop the
// event (EventIgnored) rather than propagating an error.
func ClassifyDetailed(key, eventName, eventArg string) Event {
	switch eventName {
	case "del":
		return Event{Kind: EventDeleted, Key: key}
	case "expire":
		return Event{Kind: EventExpire, Key: key}
	case "rename_key":
		if eventArg == "" {
			return Event{Kind: EventIgnored, Key: key}
		}
		return Event{Kind: EventRenamed, Key: key, NewKey: eventArg}
	case "set":
		return Event{Kind: EventStringSet, Key: key}
	case "setbit", "setrange", "incrby", "incrbyfloat", "decrby", "decrbyfloat", "append":
		return Event{Kind: EventStringMutated, Key: key}
	case "hset", "hdel", "hincr", "hincrbyfloat", "hdecr", "hdecrbyfloat":
		return Event{Kind: EventHashFieldChanged, Key: key, Field: eventArg}
	case "srem":
		return Event{Kind: EventSetMemberRemoved, Key: key, MemberToken: eventArg}
	case "zadd", "zrem", "zincr", "zdecr":
		token, err := strconv.ParseInt(eventArg, 10, 64)
		if err != nil {
			return Event{Kind: EventIgnored, Key: key}
		}
		return Event{Kind: EventSortedSetMemberChanged, Key: key, ZMemberToken: token}
	case "zremrangebyscore":
		return classifyRangeByScore(key, eventArg)
	case "zremrangebyrank", "zremrangebylex":
		return Event{Kind: EventSortedSetRangeInvalidated, Key: key}
	default:
		return Event{Kind: EventIgnored, Key: key}
	}
}

func classifyRangeByScore(key, eventArg string) Event {
	parts := strings.Split(eventArg, "-")
	if len(parts) != 3 {
		return Event{Kind: EventIgnored, Key: key}
	}

	start, errStart := strconv.ParseFloat(parts[0], 64)
	stop, errStop := strconv.ParseFloat(parts[1], 64)
	excludeCode, errExclude := strconv.Atoi(parts[2])
	if errStart != nil || errStop != nil || errExclude != nil {
		return Event{Kind: EventIgnored, Key: key}
	}
	if excludeCode < int(ExcludeNone) || excludeCode > int(ExcludeBoth) {
		return Event{Kind: EventIgnored, Key: key}
	}

	return Event{
		Kind:       EventSortedSetRangeByScoreRemoved,
		Key:        key,
		RangeStart: start,
		RangeStop:  stop,
		Exclude:    Exclude(excludeCode),
	}
}
