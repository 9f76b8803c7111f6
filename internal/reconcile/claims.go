package reconcile

import (
	"context"
	"path"
	"strings"

	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/textutil"
)

// claims tracks which item owns each derived file stem during one operation.
type claims struct {
	owners   map[string]string
	disambig bool
	engine   *Engine
}

func (e *Engine) newClaims() *claims {
	return &claims{owners: map[string]string{}, disambig: e.disambig, engine: e}
}

// seed registers a stem already recorded by an item.
func (c *claims) seed(stem, key string) {
	if stem == "" || key == "" {
		return
	}
	if _, taken := c.owners[stem]; !taken {
		c.owners[stem] = key
	}
}

// claim reserves stem for the item identified by key. A stem held by another
// item is either reused with a warning or suffixed with the item id.
func (c *claims) claim(ctx context.Context, stem, key, id string) string {
	owner, taken := c.owners[stem]
	if !taken || owner == key {
		c.owners[stem] = key
		return stem
	}
	logger := logging.WithContext(ctx, c.engine.logger)
	if !c.disambig {
		logging.WarnWithContext(logger, "asset filename collision", "asset_name_collision",
			logging.String("stem", stem),
			logging.String("previous_owner", owner),
			logging.String(logging.FieldImpact, "the later item overwrites the earlier item's file"),
			logging.String(logging.FieldErrorHint, "set images.collisions = \"disambiguate\" to keep both"),
		)
		c.owners[stem] = key
		return stem
	}
	renamed := stem + "-" + textutil.SanitizeToken(id)
	logger.Info("asset filename disambiguated",
		logging.String("stem", stem),
		logging.String("renamed", renamed),
		logging.String("previous_owner", owner),
	)
	c.owners[renamed] = key
	return renamed
}

// audioNamer adapts claim to the audio workflow's file-name hook.
func (c *claims) audioNamer(ctx context.Context, key, id string) func(string) string {
	return func(name string) string {
		stem := strings.TrimSuffix(name, ".mp3")
		return c.claim(ctx, stem, key, id) + ".mp3"
	}
}

func audioStem(logical string) string {
	return strings.TrimSuffix(path.Base(logical), ".mp3")
}
