package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/desertthunder/streamtunes/internal/models"
)

// TrackList is the uniform envelope for track collections. The Data slice
// is never nil, so callers can range over it without checks.
type TrackList struct {
	Data []models.Track `json:"data"`
}

// EmptyTrackList is the canonical "no data" value for track operations.
func EmptyTrackList() TrackList {
	return TrackList{Data: []models.Track{}}
}

// Envelope wraps a pass-through catalog payload. Track internals are not
// remapped; the normalizer's only job is distinguishing "zero items" from
// "call failed" and presenting both as the same shape.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// EmptyEnvelope is the canonical "no data" value for pass-through operations.
func EmptyEnvelope() Envelope {
	return Envelope{Data: json.RawMessage("[]")}
}

// StringEnvelope wraps a scalar string value, e.g. a stream URL.
func StringEnvelope(s string) Envelope {
	data, _ := json.Marshal(s)
	return Envelope{Data: data}
}

// normalizeTracks decodes an upstream track-collection payload. The second
// return value reports whether the payload carried a data collection at
// all; absent or null data yields the empty list.
func normalizeTracks(payload []byte) (TrackList, bool) {
	var decoded TrackList
	if err := json.Unmarshal(payload, &decoded); err != nil || decoded.Data == nil {
		return EmptyTrackList(), false
	}
	return decoded, true
}

// normalizeRaw decodes an upstream payload into a pass-through envelope,
// substituting the empty sentinel when no data collection is present.
func normalizeRaw(payload []byte) Envelope {
	var decoded Envelope
	if err := json.Unmarshal(payload, &decoded); err != nil || isNullData(decoded.Data) {
		return EmptyEnvelope()
	}
	return decoded
}

// isNullData reports whether a raw data field is absent or JSON null.
func isNullData(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

// mergeUnique appends supplement tracks after primary ones, skipping
// duplicate IDs, and truncates the result to limit. Primary order is
// preserved first.
func mergeUnique(primary, supplement []models.Track, limit int) []models.Track {
	seen := make(map[string]struct{}, len(primary))
	merged := make([]models.Track, 0, limit)

	for _, track := range primary {
		if len(merged) == limit {
			return merged
		}
		seen[track.ID] = struct{}{}
		merged = append(merged, track)
	}

	for _, track := range supplement {
		if len(merged) == limit {
			break
		}
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		merged = append(merged, track)
	}

	return merged
}
