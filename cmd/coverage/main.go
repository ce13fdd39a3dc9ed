package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/imaging"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// This tool audits the season image folders: every season needs at least
// one image, and every image must render to the JPEG the API serves.

// ImageResult holds the result for a single image file
type ImageResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Bytes   int    `json:"bytes"`
	Error   string `json:"error,omitempty"`
}

// SeasonStats tracks statistics for each season folder
type SeasonStats struct {
	Season  string        `json:"season"`
	Folder  string        `json:"folder"`
	Problem string        `json:"problem,omitempty"`
	Images  []ImageResult `json:"images"`
	Failed  int           `json:"failed"`
}

func main() {
	root := flag.String("root", "./", "Directory holding the season folders")
	maxDim := flag.Int("max-dim", 0, "Render at this maximum dimension (0 = original size)")
	verbose := flag.Bool("v", false, "Verbose output (show each image)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	fmt.Println("================================================================")
	fmt.Println("Seasonal Greetings - Image Coverage")
	fmt.Println("================================================================")
	fmt.Printf("Image root:  %s\n", *root)
	fmt.Println()

	renderer := imaging.Renderer{MaxDimension: *maxDim}

	var (
		stats    []SeasonStats
		problems int
	)
	for _, season := range calendar.Seasons() {
		st := auditSeason(renderer, *root, season, *verbose)
		if st.Problem != "" {
			problems++
		}
		problems += st.Failed
		stats = append(stats, st)
	}

	printSummary(stats)

	// Output to file if requested
	if *outputFile != "" {
		if err := saveResults(*outputFile, stats); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nResults saved to %s\n", *outputFile)
	}

	// Exit with error code if there were failures
	if problems > 0 {
		os.Exit(1)
	}
}

func auditSeason(r imaging.Renderer, root string, season calendar.Season, verbose bool) SeasonStats {
	dir := filepath.Join(root, string(season))
	st := SeasonStats{Season: string(season), Folder: dir}

	names, err := tracker.ListImages(dir)
	switch {
	case errors.Is(err, tracker.ErrFolderNotFound):
		st.Problem = "folder not found"
		return st
	case errors.Is(err, tracker.ErrNoImages):
		st.Problem = "no image files"
		return st
	case err != nil:
		st.Problem = err.Error()
		return st
	}

	for _, name := range names {
		res := ImageResult{Name: name}
		data, err := r.Render(filepath.Join(dir, name))
		if err == nil {
			// Passthrough JPEGs are not decoded by Render.
			_, err = jpeg.DecodeConfig(bytes.NewReader(data))
		}
		if err != nil {
			res.Error = err.Error()
			st.Failed++
		} else {
			res.Success = true
			res.Bytes = len(data)
		}
		st.Images = append(st.Images, res)

		if verbose {
			status := "✓"
			if !res.Success {
				status = "✗"
			}
			fmt.Printf("  %s %s/%s (%d bytes)\n", status, season, name, res.Bytes)
			if !res.Success {
				fmt.Printf("      Error: %s\n", res.Error)
			}
		}
	}
	return st
}

func printSummary(stats []SeasonStats) {
	fmt.Println()
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")

	for _, st := range stats {
		if st.Problem != "" {
			fmt.Printf("  ✗ %-8s %s\n", st.Season, st.Problem)
			continue
		}
		mark := "✓"
		if st.Failed > 0 {
			mark = "✗"
		}
		fmt.Printf("  %s %-8s %d images, %d failed\n", mark, st.Season, len(st.Images), st.Failed)
		for _, img := range st.Images {
			if !img.Success {
				fmt.Printf("      %s: %s\n", img.Name, img.Error)
			}
		}
	}
}

func saveResults(path string, stats []SeasonStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
