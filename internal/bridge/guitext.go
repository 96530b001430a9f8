package bridge

import (
	"strconv"
	"strings"

	"github.com/MikeWelton/screen-worms/internal/wire"
)

// newGameLine renders "NEW_GAME maxx maxy name1 name2 ...".
func newGameLine(b wire.NewGameBody) string {
	var sb strings.Builder
	sb.WriteString("NEW_GAME ")
	sb.WriteString(strconv.FormatUint(uint64(b.MaxX), 10))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatUint(uint64(b.MaxY), 10))
	for _, name := range b.PlayerNames {
		sb.WriteByte(' ')
		sb.WriteString(name)
	}
	return sb.String()
}

// pixelLine renders "PIXEL x y name". names must already have been bounds
// checked against b.PlayerNumber by the caller.
func pixelLine(b wire.PixelBody, names []string) string {
	var sb strings.Builder
	sb.WriteString("PIXEL ")
	sb.WriteString(strconv.FormatUint(uint64(b.X), 10))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatUint(uint64(b.Y), 10))
	sb.WriteByte(' ')
	sb.WriteString(names[b.PlayerNumber])
	return sb.String()
}

// eliminatedLine renders "PLAYER_ELIMINATED name".
func eliminatedLine(b wire.PlayerEliminatedBody, names []string) string {
	return "PLAYER_ELIMINATED " + names[b.PlayerNumber]
}
