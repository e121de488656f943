// Package influx writes combat effect points and host-reported metrics to
// InfluxDB, falling back to a gzipped line-protocol file when the server
// cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	protocol "github.com/influxdata/line-protocol"
	"github.com/rs/zerolog"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/util"
	"github.com/industrialmelee/extension/pkg/core"
)

// HostBucket receives metrics the host sends with :METRIC:.
const HostBucket = "host_performance"

const (
	EffectMeasurement = "melee_effect"
	ChargeMeasurement = "apparel_charge"
)

// ErrDisabled is returned by Connect when influx is turned off in config.
var ErrDisabled = errors.New("influx is disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client      influxdb2.Client
	Writers     map[string]influxdb2_api.WriteAPI
	IsValid     bool
	BucketNames []string
	Logger      zerolog.Logger
	BackupPath  string

	cfg          config.InfluxConfig
	backupFile    *os.File
	backupWriter  *gzip.Writer
	backupEncoder *protocol.Encoder
	mu           sync.Mutex
}

// NewManager creates a new InfluxDB manager. cfg.Bucket receives effect
// and charge points; HostBucket receives host metrics.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	buckets := []string{HostBucket}
	if cfg.Bucket != "" && cfg.Bucket != HostBucket {
		buckets = append([]string{cfg.Bucket}, buckets...)
	}
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		BucketNames: buckets,
		Logger:      log,
		BackupPath:  backupPath,
		cfg:         cfg,
	}
}

// ServerURL is the address the client connects to.
func (m *Manager) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Connect establishes a connection to InfluxDB. When the server does not
// answer the ping, writes go to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.ServerURL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.Logger.Info().Err(err).Str("backupPath", m.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		if err := m.openBackup(); err != nil {
			return err
		}
		return nil
	}

	if err := m.setupOrganizationAndBuckets(ctx); err != nil {
		return err
	}
	m.CreateWriters()
	m.IsValid = true
	m.Logger.Info().Str("url", m.ServerURL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backupWriter != nil {
		return nil
	}
	if m.BackupPath == "" {
		return errors.New("influx backup path not set")
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	m.backupEncoder = protocol.NewEncoder(m.backupWriter)
	m.backupEncoder.SetPrecision(time.Nanosecond)
	m.backupEncoder.SetFieldTypeSupport(protocol.UintSupport)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets(ctx context.Context) error {
	orgName := m.cfg.Org

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return fmt.Errorf("error creating organization %s: %w", orgName, err)
		}
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return fmt.Errorf("error creating bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(m.cfg.Org, bucket)

		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, m.Writers[bucket].Errors())
	}
	m.Logger.Debug().Strs("buckets", m.BucketNames).Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	if m.backupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	if _, err := m.backupEncoder.Encode(point); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// RecordEffect writes one fired special effect.
func (m *Manager) RecordEffect(e core.EffectEvent) error {
	return m.WritePoint(m.effectBucket(), EffectPoint(e))
}

// RecordCharge writes the charge level of a worn apparel.
func (m *Manager) RecordCharge(actorID, apparelID string, remaining, max, tick int, at time.Time) error {
	return m.WritePoint(m.effectBucket(), ChargePoint(actorID, apparelID, remaining, max, tick, at))
}

// WriteMetric parses a host metric line and writes it.
func (m *Manager) WriteMetric(data []string) error {
	bucket, point, err := ProcessMetricData(data)
	if err != nil {
		return err
	}
	return m.WritePoint(bucket, point)
}

func (m *Manager) effectBucket() string {
	return m.BucketNames[0]
}

// Close flushes the writers and the backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	var errs []error
	if m.backupWriter != nil {
		errs = append(errs, m.backupWriter.Close())
		errs = append(errs, m.backupFile.Close())
		m.backupWriter = nil
		m.backupEncoder = nil
	}
	return errors.Join(errs...)
}

// EffectPoint builds the point for a fired effect.
func EffectPoint(e core.EffectEvent) *influxdb2_write.Point {
	return influxdb2.NewPoint(EffectMeasurement,
		map[string]string{
			"weapon": e.Weapon.String(),
			"kind":   e.Kind.String(),
		},
		map[string]any{
			"attacker":  e.AttackerID,
			"victim":    e.VictimID,
			"part":      e.PartID,
			"tick":      e.Tick,
			"emissions": e.Emissions,
			"damage":    e.Damage,
			"killed":    e.Killed,
		},
		e.Time,
	)
}

// ChargePoint builds the point for an apparel charge level.
func ChargePoint(actorID, apparelID string, remaining, max, tick int, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPoint(ChargeMeasurement,
		map[string]string{
			"actor":   actorID,
			"apparel": apparelID,
		},
		map[string]any{
			"remaining": remaining,
			"max":       max,
			"tick":      tick,
		},
		at,
	)
}

// ProcessMetricData parses metric data from the host and returns a bucket name and point.
func ProcessMetricData(data []string) (
	bucket string,
	point *influxdb2_write.Point,
	err error,
) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("metric needs a bucket and a measurement, got %d args", len(data))
	}

	fixed := util.CleanArgs(data)

	// 0 = bucket name
	// 1 = measurement name
	// n with "tag" prefix = tag name
	// n with "field" prefix = field
	// tag and field values use "::" separator
	bucket = fixed[0]
	point = influxdb2_write.NewPointWithMeasurement(fixed[1])

	for _, tag := range fixed[2:] {
		if !strings.HasPrefix(tag, "tag::") {
			continue
		}
		parts := strings.Split(tag, "::")
		if len(parts) >= 3 {
			point.AddTag(parts[1], parts[2])
		}
	}

	for _, field := range fixed[2:] {
		if !strings.HasPrefix(field, "field::") {
			continue
		}
		parts := strings.Split(field, "::")
		if len(parts) < 4 {
			continue
		}
		fieldType, fieldName, fieldValue := parts[1], parts[2], parts[3]

		switch fieldType {
		case "string":
			point.AddField(fieldName, fieldValue)
		case "int":
			intVal, err := strconv.Atoi(fieldValue)
			if err != nil {
				return "", nil, fmt.Errorf("error converting field value '%s' to int: %w", fieldValue, err)
			}
			point.AddField(fieldName, intVal)
		case "float":
			floatVal, err := strconv.ParseFloat(fieldValue, 64)
			if err != nil {
				return "", nil, fmt.Errorf("error converting field value '%s' to float: %w", fieldValue, err)
			}
			point.AddField(fieldName, floatVal)
		case "bool":
			boolVal, err := util.ParseBool(fieldValue)
			if err != nil {
				return "", nil, fmt.Errorf("error converting field value '%s' to bool: %w", fieldValue, err)
			}
			point.AddField(fieldName, boolVal)
		}
	}

	return bucket, point.SetTime(time.Now()), nil
}
