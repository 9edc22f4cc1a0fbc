package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	gradebook.InitValidators(validate, translator)

	out := new(bytes.Buffer)
	return &commandLine{
		conf:     core.NewTestConfig(),
		out:      out,
		validate: validate,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	return path
}

func Test_commandLine_usage(t *testing.T) {
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "checkcsv: no args", args: []string{"checkcsv"}, wantErr: errHelp},
		{name: "checkcsv: unknown flag", args: []string{"checkcsv", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if out.Len() == 0 {
				t.Error("usage not printed")
			}
		})
	}
}

func Test_commandLine_hashPassword(t *testing.T) {
	type extra struct {
		pwd string
		err error
	}
	errTerm := errors.New("inappropriate ioctl for device")

	tests := []cliTest{
		{name: "empty password", args: []string{"hashpassword"}, wantErr: errHelp},
		{name: "terminal error", args: []string{"hashpassword"}, extra: extra{err: errTerm}, wantErr: errTerm},
		{name: "hash", args: []string{"hashpassword"}, extra: extra{pwd: "s3cr3t"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), extra.err
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(args)
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			hash := lines[len(lines)-1]
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.extra.(extra).pwd)); err != nil {
				t.Errorf("printed hash %q does not match the password: %v", hash, err)
			}
		})
	}
}

func Test_commandLine_checkCSV(t *testing.T) {
	valid := writeFile(t, "ok.csv", "classId,studentCode,name,lessonId,score\n"+
		"10A1,10A1-099,Le Van B,cauchy1,8.5\n"+
		"10A1,10A1-099,,quad,\n")
	invalid := writeFile(t, "rows.csv", "classId,studentCode,lessonId\n"+
		"10A1,,quad\n"+
		"10A1,10A1-100,lesson9\n")
	malformed := writeFile(t, "bad.csv", "classId,studentCode\n10A1,\"10A1-1\n")

	tests := []cliTest{
		{name: "missing file", args: []string{"checkcsv", "-file", filepath.Join(t.TempDir(), "nope.csv")}, wantErrStr: "no such file or directory"},
		{name: "malformed", args: []string{"checkcsv", "-file", malformed}, wantErrStr: "parsing"},
		{name: "row errors", args: []string{"checkcsv", "-file", invalid}, wantErr: errRowErrors, extra: []string{
			"rows: 2", "errors: 2", "Dòng 2: thiếu classId hoặc studentCode", "Dòng 3: lessonId không hợp lệ (lesson9)",
		}},
		{name: "valid", args: []string{"checkcsv", "-file", valid}, extra: []string{
			"rows: 2", "students: 2", "grades: 2", "errors: 0",
		}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}

			if lines, ok := tt.extra.([]string); ok {
				for _, line := range lines {
					if !strings.Contains(out.String(), line) {
						t.Errorf("output %q does not contain %q", out.String(), line)
					}
				}
			}
		})
	}
}

func Test_commandLine_template(t *testing.T) {
	cli, out := setup(t)
	if err := cli.run([]string{"admin", "template"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if want := strings.Join(gradebook.Columns, ",") + "\n"; out.String() != want {
		t.Errorf("template = %q, want %q", out.String(), want)
	}
}
