// drying-calibrate fits the drying-duration model against completed job
// history. It correlates the capacity headroom that was deployed on each
// job (achieved L/day over the required floor) with the days the job
// actually took to dry, fits candidate models, and prints the sizing
// constants that best reproduce the observed durations.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// JobRecord is one completed drying job: the class it was assessed at,
// the ratio of achieved to required capacity, and the observed days to
// reach dry standard.
type JobRecord struct {
	Class         int
	HeadroomRatio float64
	ActualDays    float64
}

// ModelType represents the candidate duration models.
type ModelType string

const (
	ModelConstant  ModelType = "constant"
	ModelInverse   ModelType = "inverse"
	ModelQuadratic ModelType = "quadratic"
)

// FitResult contains the regression output for one model.
type FitResult struct {
	ModelType            ModelType
	ModelName            string
	Coefficients         []float64
	RSquared             float64
	MeanAbsoluteError    float64
	RootMeanSquaredError float64
	AIC                  float64
	SampleCount          int
}

func main() {
	var (
		dbHost  = flag.String("db-host", "localhost", "Database host")
		dbPort  = flag.Int("db-port", 5432, "Database port")
		dbUser  = flag.String("db-user", "postgres", "Database user")
		dbPass  = flag.String("db-pass", "", "Database password")
		dbName  = flag.String("db-name", "restocalc", "Database name")
		csvIn   = flag.String("csv", "", "Read job history from a CSV file (class,headroom_ratio,actual_days) instead of Postgres")
		days    = flag.Int("days", 365, "Number of days of job history to analyze")
		class   = flag.Int("class", 0, "Restrict analysis to one class (0 = all)")
	)
	flag.Parse()

	var records []JobRecord
	var err error
	if *csvIn != "" {
		records, err = readCSV(*csvIn)
	} else {
		records, err = fetchJobHistory(*dbHost, *dbPort, *dbUser, *dbPass, *dbName, *days)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading job history: %v\n", err)
		os.Exit(1)
	}

	if *class > 0 {
		filtered := records[:0]
		for _, r := range records {
			if r.Class == *class {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) < 10 {
		fmt.Fprintf(os.Stderr, "Error: Not enough data points (%d). Need at least 10.\n", len(records))
		os.Exit(1)
	}

	fmt.Printf("Drying Duration Model Calibration\n")
	fmt.Printf("=================================\n\n")
	fmt.Printf("Collected %d completed jobs\n\n", len(records))

	results := []FitResult{
		fitConstantModel(records),
		fitInverseModel(records),
		fitQuadraticModel(records),
	}

	displayComparison(results)

	best := results[0]
	for _, r := range results {
		if r.AIC < best.AIC {
			best = r
		}
	}
	displayBestModel(best)
	suggestBaseDays(records, best)
}

func fetchJobHistory(host string, port int, user, pass, name string, days int) ([]JobRecord, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	query := `
		SELECT
			class,
			achieved_capacity_lpd / NULLIF(required_capacity_lpd, 0) AS headroom_ratio,
			EXTRACT(EPOCH FROM (dried_at - deployed_at)) / 86400.0 AS actual_days
		FROM completed_jobs
		WHERE dried_at IS NOT NULL
		  AND deployed_at >= NOW() - INTERVAL '1 day' * $1
		  AND required_capacity_lpd > 0
		ORDER BY deployed_at
	`

	rows, err := db.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("error querying job history: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var r JobRecord
		if err := rows.Scan(&r.Class, &r.HeadroomRatio, &r.ActualDays); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func readCSV(path string) ([]JobRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var records []JobRecord
	for i, row := range rows {
		if i == 0 && row[0] == "class" {
			continue // header
		}
		if len(row) < 3 {
			continue
		}
		class, err1 := strconv.Atoi(row[0])
		headroom, err2 := strconv.ParseFloat(row[1], 64)
		actual, err3 := strconv.ParseFloat(row[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintf(os.Stderr, "Skipping malformed row %d\n", i+1)
			continue
		}
		records = append(records, JobRecord{Class: class, HeadroomRatio: headroom, ActualDays: actual})
	}
	return records, nil
}

func extract(records []JobRecord) (headrooms, days []float64) {
	headrooms = make([]float64, len(records))
	days = make([]float64, len(records))
	for i, r := range records {
		headrooms[i] = r.HeadroomRatio
		days[i] = r.ActualDays
	}
	return headrooms, days
}

// fitConstantModel: days = c0 regardless of headroom. The null hypothesis.
func fitConstantModel(records []JobRecord) FitResult {
	_, days := extract(records)
	meanDays := stat.Mean(days, nil)

	result := FitResult{
		ModelType:    ModelConstant,
		ModelName:    "Constant",
		Coefficients: []float64{meanDays},
		SampleCount:  len(records),
	}
	finishFit(&result, records, func(h float64) float64 { return meanDays }, 1)
	result.RSquared = 0.0
	return result
}

// fitInverseModel: days = c0 + c1/headroom. This is the shape the sizing
// policy assumes: doubling deployed capacity halves the duration overage.
func fitInverseModel(records []JobRecord) FitResult {
	headrooms, days := extract(records)

	inv := make([]float64, len(headrooms))
	for i, h := range headrooms {
		inv[i] = 1 / h
	}
	slope, intercept := stat.LinearRegression(inv, days, nil, false)

	result := FitResult{
		ModelType:    ModelInverse,
		ModelName:    "Inverse headroom",
		Coefficients: []float64{intercept, slope},
		SampleCount:  len(records),
	}
	finishFit(&result, records, func(h float64) float64 { return intercept + slope/h }, 2)
	return result
}

// fitQuadraticModel: days = c0 + c1*h + c2*h², solved by QR decomposition.
func fitQuadraticModel(records []JobRecord) FitResult {
	headrooms, days := extract(records)
	n := len(records)

	X := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= 2; j++ {
			X.Set(i, j, math.Pow(headrooms[i], float64(j)))
		}
	}
	y := mat.NewVecDense(n, days)

	var qr mat.QR
	qr.Factorize(X)

	coeffs := mat.NewVecDense(3, nil)
	if err := qr.SolveVecTo(coeffs, false, y); err != nil {
		fmt.Fprintf(os.Stderr, "Error solving quadratic regression: %v\n", err)
		return FitResult{ModelType: ModelQuadratic, ModelName: "Quadratic", AIC: math.Inf(1)}
	}

	coeff := []float64{coeffs.AtVec(0), coeffs.AtVec(1), coeffs.AtVec(2)}
	result := FitResult{
		ModelType:    ModelQuadratic,
		ModelName:    "Quadratic",
		Coefficients: coeff,
		SampleCount:  n,
	}
	finishFit(&result, records, func(h float64) float64 {
		return coeff[0] + coeff[1]*h + coeff[2]*h*h
	}, 3)
	return result
}

func finishFit(result *FitResult, records []JobRecord, predict func(float64) float64, params float64) {
	headrooms, days := extract(records)
	n := float64(len(records))

	meanDays := stat.Mean(days, nil)
	var ssTot, ssRes, sumAbs float64
	for i := range days {
		pred := predict(headrooms[i])
		ssTot += math.Pow(days[i]-meanDays, 2)
		ssRes += math.Pow(days[i]-pred, 2)
		sumAbs += math.Abs(days[i] - pred)
	}

	if ssTot > 0 {
		result.RSquared = 1 - ssRes/ssTot
	}
	result.MeanAbsoluteError = sumAbs / n
	result.RootMeanSquaredError = math.Sqrt(ssRes / n)
	result.AIC = n*math.Log(ssRes/n) + 2*params
}

func displayComparison(results []FitResult) {
	fmt.Printf("Model Comparison:\n")
	fmt.Printf("%-18s %8s %8s %8s %10s\n", "Model", "R²", "MAE", "RMSE", "AIC")
	for _, r := range results {
		fmt.Printf("%-18s %8.4f %8.3f %8.3f %10.2f\n",
			r.ModelName, r.RSquared, r.MeanAbsoluteError, r.RootMeanSquaredError, r.AIC)
	}
	fmt.Println()
}

func displayBestModel(best FitResult) {
	fmt.Printf("Best model by AIC: %s\n", best.ModelName)
	fmt.Printf("Coefficients:\n")
	for i, c := range best.Coefficients {
		fmt.Printf("  c%d = %+.4f\n", i, c)
	}
	fmt.Println()
}

// suggestBaseDays derives per-class base drying days: the best model
// evaluated at headroom 1.0 (selection exactly meeting the floor), scaled
// by each class's mean observed duration relative to the overall mean.
func suggestBaseDays(records []JobRecord, best FitResult) {
	predict := func(h float64) float64 {
		switch best.ModelType {
		case ModelInverse:
			return best.Coefficients[0] + best.Coefficients[1]/h
		case ModelQuadratic:
			return best.Coefficients[0] + best.Coefficients[1]*h + best.Coefficients[2]*h*h
		default:
			return best.Coefficients[0]
		}
	}
	atFloor := predict(1.0)

	byClass := make(map[int][]float64)
	var all []float64
	for _, r := range records {
		byClass[r.Class] = append(byClass[r.Class], r.ActualDays)
		all = append(all, r.ActualDays)
	}
	overallMean := stat.Mean(all, nil)

	fmt.Printf("Suggested sizing.base_drying_days_by_class:\n")
	for class := 1; class <= 4; class++ {
		samples := byClass[class]
		if len(samples) == 0 {
			fmt.Printf("  class %d: no data\n", class)
			continue
		}
		scaled := atFloor * stat.Mean(samples, nil) / overallMean
		fmt.Printf("  class %d: %d  (%d jobs, mean %.1f days)\n",
			class, int(math.Ceil(scaled)), len(samples), stat.Mean(samples, nil))
	}
}
