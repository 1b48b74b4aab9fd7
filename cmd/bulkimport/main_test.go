package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

var validCSV = strings.Join([]string{
	"[PROJECT]",
	"advertiser_name,agency_name,appeal_point,universe_service_id,universe_service_name,delivery_start_date,delivery_end_date,person_in_charge,sub_person_in_charge,remarks",
	"株式会社A,代理店B,新商品の認知拡大,,,2024-01-01,2024-03-31,,,",
	"[SEGMENT]",
	"segment_name,media_id,designated_radius,extraction_period,attribute,detection_count,detection_time_start,detection_time_end,stay_time,ads_account_id",
	"東京エリア,UNIVERSE,500m,直近1ヶ月,検知者,1回以上,,,,",
	"[LOCATION:東京エリア]",
	"poi_name,address,latitude,longitude",
	"東京駅,東京都千代田区丸の内1丁目,35.681236,139.767125",
}, "\n") + "\n"

var invalidCSV = strings.Join([]string{
	"[PROJECT]",
	"advertiser_name,agency_name,appeal_point,universe_service_id,universe_service_name,delivery_start_date,delivery_end_date,person_in_charge,sub_person_in_charge,remarks",
	"株式会社A,,訴求,,,2024-01-01,2024-03-31,,,",
	"[SEGMENT]",
	"segment_name,media_id,designated_radius,extraction_period,attribute,detection_count,detection_time_start,detection_time_end,stay_time,ads_account_id",
	"S1,UNIVERSE,,,,,,,,",
	"[LOCATION:S9]",
	"poi_name,address,latitude,longitude",
	"地点,住所,,",
}, "\n") + "\n"

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// run executes the CLI with a config path inside dir so a stray
// bulkimport.toml in the working directory is never picked up.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "bulkimport.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// ----------------------------------------------------------------------------
// Parse Tests
// ----------------------------------------------------------------------------

func TestParse_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "import.csv", validCSV)

	out, err := run(t, dir, "parse", path)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var result core.ParseResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Grammar != core.GrammarBracket {
		t.Errorf("Grammar = %q, want %q", result.Grammar, core.GrammarBracket)
	}
	if result.Project == nil || result.Project.AdvertiserName != "株式会社A" {
		t.Errorf("Project = %+v, want advertiser 株式会社A", result.Project)
	}
	if result.Project != nil && result.Project.Owner != core.DefaultOwner {
		t.Errorf("Owner = %q, want %q", result.Project.Owner, core.DefaultOwner)
	}
	if len(result.Segments) != 1 || len(result.Locations) != 1 {
		t.Errorf("got %d segments, %d locations; want 1, 1", len(result.Segments), len(result.Locations))
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %+v, want none", result.Errors)
	}
}

func TestParse_YAMLMatchesJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "import.csv", invalidCSV)

	jsonOut, err := run(t, dir, "parse", path)
	if err != nil {
		t.Fatalf("parse json error = %v", err)
	}
	yamlOut, err := run(t, dir, "parse", "--output", "yaml", path)
	if err != nil {
		t.Fatalf("parse yaml error = %v", err)
	}

	var fromJSON, fromYAML core.ParseResult
	if err := json.Unmarshal([]byte(jsonOut), &fromJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	if err := yaml.Unmarshal([]byte(yamlOut), &fromYAML); err != nil {
		t.Fatalf("yaml: %v\n%s", err, yamlOut)
	}
	if !strings.Contains(yamlOut, "segment_name: S1") {
		t.Errorf("yaml output should use snake_case keys:\n%s", yamlOut)
	}
	if diff := cmp.Diff(fromJSON.Errors, fromYAML.Errors); diff != "" {
		t.Errorf("findings differ between formats (-json +yaml):\n%s", diff)
	}
}

func TestParse_FailOnError(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.csv", validCSV)
	invalid := writeFile(t, dir, "invalid.csv", invalidCSV)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"findings without flag", []string{"parse", invalid}, nil},
		{"findings with flag", []string{"parse", "--fail-on-error", invalid}, errHasErrors},
		{"clean with flag", []string{"parse", "--fail-on-error", valid}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bulkimport.toml", `
[import]
default_owner = "営業部"
max_file_size = 1048576

[output]
format = "yaml"
fail_on_error = true
`)
	path := writeFile(t, dir, "import.csv", validCSV)

	out, err := run(t, dir, "parse", path)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if !strings.Contains(out, "person_in_charge: 営業部") {
		t.Errorf("config default owner not applied:\n%s", out)
	}

	// Flags override the file.
	out, err = run(t, dir, "parse", "-o", "json", path)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("--output json ignored:\n%s", out)
	}

	invalid := writeFile(t, dir, "invalid.csv", invalidCSV)
	if _, err := run(t, dir, "parse", invalid); !errors.Is(err, errHasErrors) {
		t.Errorf("fail_on_error from config: error = %v, want %v", err, errHasErrors)
	}
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	big := writeFile(t, dir, "big.csv", validCSV)
	writeFile(t, dir, "small.toml", "[import]\nmax_file_size = 16\n")
	writeFile(t, dir, "bad.toml", "[output]\nformat = \"xml\"\n")

	t.Run("missing file", func(t *testing.T) {
		if _, err := run(t, dir, "parse", filepath.Join(dir, "nope.csv")); err == nil {
			t.Error("expected error for a missing file")
		}
	})

	t.Run("too large", func(t *testing.T) {
		var stdout bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", filepath.Join(dir, "small.toml"), "parse", big})
		if err := cmd.Execute(); !errors.Is(err, errFileTooLarge) {
			t.Errorf("error = %v, want %v", err, errFileTooLarge)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", filepath.Join(dir, "bad.toml"), "parse", big})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "output.format") {
			t.Errorf("error = %v, want output.format validation error", err)
		}
	})

	t.Run("unknown output", func(t *testing.T) {
		if _, err := run(t, dir, "parse", "--output", "xml", big); err == nil {
			t.Error("expected error for --output xml")
		}
	})

	t.Run("no args", func(t *testing.T) {
		if _, err := run(t, dir, "parse"); err == nil {
			t.Error("expected error without a file argument")
		}
	})
}

// ----------------------------------------------------------------------------
// Detect Tests
// ----------------------------------------------------------------------------

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "import.csv", validCSV)
	plain := writeFile(t, dir, "plain.csv", "a,b\n1,2\n")

	legacy := excelize.NewFile()
	legacy.SetSheetName("Sheet1", "2.案件情報")
	legacy.NewSheet("3.セグメント設定")
	legacy.NewSheet("4.地点リスト")
	xlsxPath := filepath.Join(dir, "legacy.xlsx")
	if err := legacy.SaveAs(xlsxPath); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	legacy.Close()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"bracket csv", csvPath, "bracket", false},
		{"legacy workbook", xlsxPath, "legacy", false},
		{"unrecognized", plain, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, dir, "detect", tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("detect = %q, want %q", got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Report Tests
// ----------------------------------------------------------------------------

func TestReport_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "import.csv", invalidCSV)
	out := filepath.Join(dir, "errors.csv")

	stdout, err := run(t, dir, "report", path, "--out", out)
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	if !strings.Contains(stdout, out) {
		t.Errorf("summary should name the report path: %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\ufeff")) {
		t.Error("csv report should start with a UTF-8 BOM")
	}
	if !strings.Contains(string(data), strings.Join(core.ReportHeader, ",")) {
		t.Errorf("report missing header:\n%s", data)
	}
	if !strings.Contains(string(data), "S9") {
		t.Errorf("report missing unknown-segment finding:\n%s", data)
	}
}

func TestReport_Workbook(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "import.csv", invalidCSV)
	out := filepath.Join(dir, "errors.xlsx")

	if _, err := run(t, dir, "report", path, "--out", out); err != nil {
		t.Fatalf("report error = %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("エラー一覧")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("report has %d rows, want header and findings", len(rows))
	}
	if diff := cmp.Diff(core.ReportHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_BadExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "import.csv", validCSV)

	if _, err := run(t, dir, "report", path, "--out", filepath.Join(dir, "errors.txt")); err == nil {
		t.Error("expected error for a .txt report path")
	}
}
