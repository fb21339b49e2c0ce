package export

import (
	"context"
	"os"
	"path/filepath"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"github.com/jwulff/commutes/internal/tables"
)

// GeoJSONFile is the file name written by GeoJSON.
const GeoJSONFile = "routes.geojson"

// GeoJSON writes one LineString feature per route.
type GeoJSON struct {
	Dir string
}

// Name implements Sink.
func (g GeoJSON) Name() string { return "geojson" }

// Save implements Sink.
func (g GeoJSON) Save(_ context.Context, res tables.Result) error {
	data, err := FeatureCollection(res).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal geojson")
	}

	f, err := createTemp(g.Dir, "."+GeoJSONFile+"-*")
	if err != nil {
		return errors.Wrapf(err, "write %s", GeoJSONFile)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrapf(err, "write %s", GeoJSONFile)
	}
	if err := f.Chmod(FileMode); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrapf(err, "write %s", GeoJSONFile)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrapf(err, "write %s", GeoJSONFile)
	}
	if err := rename(f.Name(), filepath.Join(g.Dir, GeoJSONFile)); err != nil {
		os.Remove(f.Name())
		return errors.Wrapf(err, "replace %s", GeoJSONFile)
	}
	return nil
}

// FeatureCollection builds the route features. Routes with fewer than two
// points are skipped.
func FeatureCollection(res tables.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range res.Routes {
		line := res.Line(r.ID)
		if len(line) < 2 {
			continue
		}
		coords := make([][]float64, len(line))
		for i, p := range line {
			coords[i] = []float64{p.Lon(), p.Lat()}
		}

		f := geojson.NewLineStringFeature(coords)
		f.ID = r.ID
		f.SetProperty("route_id", r.ID)
		f.SetProperty("route_hash", r.Fingerprint)
		f.SetProperty("summary", r.Summary)
		f.SetProperty("traffic_model", r.TrafficModel)
		f.SetProperty("commute", r.Commute)
		f.SetProperty("departure_timestamp", r.Departure.Format(tables.TimestampLayout))
		fc.AddFeature(f)
	}
	return fc
}
