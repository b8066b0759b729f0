package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"boardview/internal/gallery"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "Print the images in the store, oldest first",
	Action: func(c *cli.Context) error {
		e, err := setup(c, false)
		if err != nil {
			return err
		}
		defer e.close(c.Context)

		images, err := e.client.ListImages(c.Context)
		if err != nil {
			return err
		}
		if len(images) == 0 {
			fmt.Fprintln(c.App.Writer, "No images")
			return nil
		}
		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tFILENAME\tTAKEN\tID")
		for i, img := range images {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, img.Filename, taken(img.Timestamp), img.ID)
		}
		return w.Flush()
	},
}

var downloadCommand = &cli.Command{
	Name:      "download",
	Usage:     "Download every image as a zip, or all of them in one pdf",
	ArgsUsage: "zip|pdf",
	Action: func(c *cli.Context) error {
		kind := gallery.DownloadKind(c.Args().First())
		if kind == "" {
			kind = gallery.DownloadZip
		}
		if kind != gallery.DownloadZip && kind != gallery.DownloadPDF {
			return fmt.Errorf("unknown download %q: want zip or pdf", kind)
		}
		e, err := setup(c, false)
		if err != nil {
			return err
		}
		defer e.close(c.Context)

		url := e.client.DownloadURL(kind)
		nav := e.navigator()
		if s, ok := nav.(gallery.Saver); ok {
			path, err := s.Save(c.Context, url)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Saved %s\n", path)
			return nil
		}
		if err := nav.Navigate(c.Context, url); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Opened %s\n", url)
		return nil
	},
}

var uploadCommand = &cli.Command{
	Name:      "upload",
	Usage:     "Upload one image file",
	ArgsUsage: "FILE",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("upload takes exactly one file")
		}
		e, err := setup(c, false)
		if err != nil {
			return err
		}
		defer e.close(c.Context)

		res, err := e.client.UploadFile(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: %s %s\n", res.Message, res.PublicID, res.URL)
		return nil
	},
}

func taken(ts float64) string {
	if ts <= 0 {
		return "-"
	}
	return humanize.Time(time.Unix(int64(ts), 0))
}
