package influx

import (
	"fmt"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	core "github.com/openziti/reverser"
	"github.com/openziti/reverser/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"path/filepath"
	"sort"
)

func init() {
	influxCmd.AddCommand(influxLoadCmd)
}

var influxLoadCmd = &cobra.Command{
	Use:   "load <metricsRoot>",
	Short: "Load endpoint metrics written by 'metrics write'",
	Args:  cobra.ExactArgs(1),
	Run:   influxLoad,
}

func influxLoad(_ *cobra.Command, args []string) {
	authToken := ""
	if influxDbUsername != "" || influxDbPassword != "" {
		authToken = fmt.Sprintf("%s:%s", influxDbUsername, influxDbPassword)
	}
	client := influxdb2.NewClient(influxDbUrl, authToken)
	defer client.Close()

	writeApi := client.WriteAPI("", influxDbDatabase)
	go func() {
		for err := range writeApi.Errors() {
			logrus.Errorf("error writing points (%v)", err)
		}
	}()

	count := 0
	err := loadMetrics(args[0], func(p *write.Point) {
		writeApi.WritePoint(p)
		count++
	})
	if err != nil {
		logrus.Fatalf("error loading [%s] (%v)", args[0], err)
	}
	writeApi.Flush()
	logrus.Infof("complete, wrote [%d] points", count)
}

// loadMetrics converts every endpoint metrics directory beneath root into points, one measurement per dataset,
// tagged with the endpoint that produced it.
//
func loadMetrics(root string, emit func(*write.Point)) error {
	metricsMap, err := util.DiscoverMetrics(root)
	if err != nil {
		return errors.Wrap(err, "discover metrics")
	}

	var metricsRoots []string
	for metricsRoot, metricsId := range metricsMap {
		if metricsId.Id == core.MetricsId {
			metricsRoots = append(metricsRoots, metricsRoot)
		}
	}
	sort.Strings(metricsRoots)

	for _, metricsRoot := range metricsRoots {
		endpoint := metricsMap[metricsRoot].Values["endpoint"]
		for _, dataset := range core.Datasets {
			samples, err := util.ReadSamples(filepath.Join(metricsRoot, dataset+".csv"))
			if err != nil {
				return errors.Wrapf(err, "error reading dataset [%s]", dataset)
			}
			for _, sample := range samples {
				emit(influxdb2.NewPoint(dataset, nil, map[string]interface{}{"v": sample.V}, sample.Ts).AddTag("endpoint", endpoint))
			}
			logrus.Infof("loaded [%d] points for endpoint [%s] dataset [%s]", len(samples), endpoint, dataset)
		}
	}
	return nil
}
