package walkcover

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// ExportStreetsToCSV writes street coverage table with WKT geometry
func ExportStreetsToCSV(net *StreetNetwork, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "source_node", "target_node", "osm_way_id", "highway", "name", "length_meters", "covered", "walk_count", "walk_ids", "coverage_percent", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, street := range net.Segments() {
		err = writer.Write([]string{
			fmt.Sprintf("%d", street.ID),
			fmt.Sprintf("%d", street.SourceNode),
			fmt.Sprintf("%d", street.TargetNode),
			fmt.Sprintf("%d", street.OSMWayID),
			street.Highway,
			street.Name,
			fmt.Sprintf("%f", street.Length),
			fmt.Sprintf("%t", street.Covered),
			fmt.Sprintf("%d", len(street.Contributors)),
			strings.Join(street.ContributorIDs(), ","),
			fmt.Sprintf("%.2f", street.CoveragePercent()),
			wkt.MarshalString(street.Geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write street")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush CSV")
}
