package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/valyala/bytebufferpool"
)

// BuildPayload wraps a verbatim provider body for archival. The hash covers
// the identifying fields plus the body so a re-fetch of unchanged content
// upserts into the same row.
func BuildPayload(source, entityType, entityKey, leagueCode, gameExternalRef string, body []byte) Payload {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, part := range []string{source, entityType, entityKey} {
		_, _ = buf.WriteString(part)
		_ = buf.WriteByte('\n')
	}
	_, _ = buf.Write(body)

	sum := sha256.Sum256(buf.Bytes())

	return Payload{
		Source:          source,
		EntityType:      entityType,
		EntityKey:       entityKey,
		LeagueCode:      leagueCode,
		GameExternalRef: gameExternalRef,
		PayloadJSON:     string(body),
		PayloadHash:     hex.EncodeToString(sum[:]),
		IngestedAt:      time.Now().UTC(),
	}
}
