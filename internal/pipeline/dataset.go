package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/pageza/smartplate/config"
)

// FeatureColumns are the nutrient columns used for scaling and clustering
var FeatureColumns = []string{"calories", "protein_g", "carbs_g", "fat_g", "fiber_g", "sodium_mg"}

// Food is one row of the nutrition dataset
type Food struct {
	ID       int
	Name     string
	Category string
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
	FiberG   float64
	SodiumMg float64
}

// Features returns the nutrient vector in FeatureColumns order
func (f Food) Features() []float64 {
	return []float64{f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG, f.SodiumMg}
}

// Source yields the raw dataset and its file name
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, string, error)
}

// FileSource reads the dataset from local disk
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "open dataset %s", s.Path)
	}
	return f, s.Path, nil
}

// S3Source reads the dataset from an S3 object
type S3Source struct {
	Client *s3.Client
	Bucket string
	Key    string
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, string, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "get s3://%s/%s", s.Bucket, s.Key)
	}
	return out.Body, s.Key, nil
}

// SourceFromConfig reads the dataset from S3 when a bucket is configured
// and from DatasetPath otherwise
func SourceFromConfig(ctx context.Context, cfg *config.Config) (Source, error) {
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "configure dataset bucket")
	}
	if s3cfg == nil {
		return FileSource{Path: cfg.DatasetPath}, nil
	}
	return S3Source{Client: s3cfg.Client, Bucket: s3cfg.BucketName, Key: s3cfg.Key}, nil
}

// LoadDataset reads foods from src, picking the parser by file extension
func LoadDataset(ctx context.Context, src Source) ([]Food, error) {
	rc, name, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rows [][]string
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		rows, err = readXLSX(rc)
	default:
		r := csv.NewReader(rc)
		r.FieldsPerRecord = -1
		rows, err = r.ReadAll()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse dataset %s", name)
	}
	return ParseRows(rows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// ParseRows converts a header row plus records into foods. Rows without a
// name or category are dropped; missing or unparseable nutrient values are
// replaced by the column median.
func ParseRows(rows [][]string) ([]Food, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "category"} {
		if _, ok := index[required]; !ok {
			return nil, errors.Errorf("dataset is missing column %q", required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	type parsed struct {
		food   Food
		values [6]*float64
	}
	var records []parsed
	for line, row := range rows[1:] {
		name, category := cell(row, "name"), cell(row, "category")
		if name == "" || category == "" {
			continue
		}
		p := parsed{food: Food{ID: line + 1, Name: name, Category: category}}
		if id, err := strconv.Atoi(cell(row, "id")); err == nil {
			p.food.ID = id
		}
		for i, col := range FeatureColumns {
			// NaN and Inf count as missing, like empty cells
			if v, err := strconv.ParseFloat(cell(row, col), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				p.values[i] = &v
			}
		}
		records = append(records, p)
	}
	if len(records) == 0 {
		return nil, errors.New("dataset has no usable rows")
	}

	var medians [6]float64
	for i := range FeatureColumns {
		var present []float64
		for _, r := range records {
			if r.values[i] != nil {
				present = append(present, *r.values[i])
			}
		}
		medians[i] = median(present)
	}

	foods := make([]Food, len(records))
	for n, r := range records {
		var v [6]float64
		for i := range v {
			if r.values[i] != nil {
				v[i] = *r.values[i]
			} else {
				v[i] = medians[i]
			}
		}
		f := r.food
		f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG, f.SodiumMg = v[0], v[1], v[2], v[3], v[4], v[5]
		foods[n] = f
	}
	return foods, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
