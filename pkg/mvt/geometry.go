package mvt

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type command uint32

const (
	cmdMoveTo    command = 1
	cmdLineTo    command = 2
	cmdClosePath command = 7
)

// cursor is the running (x, y) of one feature's command stream. Coordinates are deltas against it.
type cursor struct {
	x, y int64
}

func zigzag(n uint32) int64 {
	return int64(int32(n>>1) ^ -int32(n&1))
}

// DecodeLines replays the command stream of f into line strings in tile-local normalized space
// (coordinate / extent). Line strings with fewer than 2 points are dropped. ClosePath is ignored
// and unknown command ids are skipped with a warning.
func (l *Layer) DecodeLines(f *Feature) (orb.MultiLineString, error) {
	extent := float64(l.Extent)
	if extent == 0 {
		extent = DefaultExtent
	}
	return decodeLines(f.Geometry, extent)
}

func decodeLines(geom []uint32, extent float64) (orb.MultiLineString, error) {
	var (
		cur   cursor
		lines orb.MultiLineString
		line  orb.LineString
	)

	flush := func() {
		if len(line) >= 2 {
			lines = append(lines, line)
		}
		line = nil
	}

	i := 0
	for i < len(geom) {
		id := command(geom[i] & 0x7)
		count := int(geom[i] >> 3)
		i++

		switch id {
		case cmdMoveTo, cmdLineTo:
			if len(geom)-i < 2*count {
				return nil, errors.Wrapf(ErrMalformedTile, "geometry command %d at %d needs %d parameters, %d left", id, i-1, 2*count, len(geom)-i)
			}
			for c := 0; c < count; c++ {
				cur.x += zigzag(geom[i])
				cur.y += zigzag(geom[i+1])
				i += 2
				if id == cmdMoveTo {
					flush()
				}
				line = append(line, orb.Point{float64(cur.x) / extent, float64(cur.y) / extent})
			}
		case cmdClosePath:
		default:
			log.WithFields(log.Fields{"command": id, "offset": i - 1}).Warn("unknown geometry command, skipping")
		}
	}
	flush()

	return lines, nil
}
