package support

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"

	"github.com/MeKo-Tech/tilemarch/internal/testutil"
	"github.com/cucumber/godog"
)

// aLevelFileFromGrid writes a named fixture grid as CSV.
func (testCtx *TestContext) aLevelFileFromGrid(filename, fixture string) error {
	f, ok := testutil.Fixtures[fixture]
	if !ok {
		return fmt.Errorf("unknown grid fixture %q", fixture)
	}
	return os.WriteFile(testCtx.TempPath(filename), []byte(f.CSV()), 0o600)
}

// aLevelFileContaining writes the doc string verbatim.
func (testCtx *TestContext) aLevelFileContaining(filename string, content *godog.DocString) error {
	return os.WriteFile(testCtx.TempPath(filename), []byte(content.Content+"\n"), 0o600)
}

// theFileShouldExist checks a file in the temp directory.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	if _, err := os.Stat(testCtx.TempPath(filename)); err != nil {
		return fmt.Errorf("expected file %s: %w", filename, err)
	}
	return nil
}

// theFileShouldNotExist checks a file is absent from the temp directory.
func (testCtx *TestContext) theFileShouldNotExist(filename string) error {
	if _, err := os.Stat(testCtx.TempPath(filename)); err == nil {
		return fmt.Errorf("file %s exists but should not", filename)
	}
	return nil
}

// theFileShouldContain checks file content.
func (testCtx *TestContext) theFileShouldContain(filename, expected string) error {
	data, err := os.ReadFile(testCtx.TempPath(filename))
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain %q\nContent: %s", filename, expected, data)
	}
	return nil
}

// theImageShouldMeasure decodes an image and checks its size.
func (testCtx *TestContext) theImageShouldMeasure(filename string, width, height int) error {
	f, err := os.Open(testCtx.TempPath(filename))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	if cfg.Width != width || cfg.Height != height {
		return fmt.Errorf("image %s is %dx%d, expected %dx%d", filename, cfg.Width, cfg.Height, width, height)
	}
	return nil
}

// RegisterLevelSteps registers level file and artifact steps.
func (testCtx *TestContext) RegisterLevelSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a level file "([^"]*)" built from the "([^"]*)" grid$`, testCtx.aLevelFileFromGrid)
	sc.Step(`^a level file "([^"]*)" containing:$`, testCtx.aLevelFileContaining)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the image "([^"]*)" should be (\d+) by (\d+) pixels$`, testCtx.theImageShouldMeasure)
}
