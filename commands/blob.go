package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
)

var (
	blobBaseURL string

	blobCmd = &cobra.Command{
		Use:   "blob",
		Short: "Print the subscription blob for the credentials file",
		Long: `Encodes the credentials file into the base64 blob the server routes expect
and prints the subscription urls. Anyone holding the blob holds the password;
prefer sealed tokens (POST /seal) for urls that leave your machine.`,
		RunE: runBlob,
	}
)

func init() {
	blobCmd.Flags().StringVar(&blobBaseURL, "base-url", "http://localhost:8080",
		"Server base url for the printed examples")
	rootCmd.AddCommand(blobCmd)
}

func runBlob(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}

	creds, err := credstore.LoadFile(expandPath(credentialsFile))
	if err != nil {
		return err
	}

	blob, err := credstore.EncodeBlob(creds)
	if err != nil {
		return err
	}

	fmt.Println(blob)
	fmt.Println()
	fmt.Printf("%s/base64/%s/timetable.ics\n", blobBaseURL, blob)
	fmt.Printf("%s/base64/%s/combine.ics\n", blobBaseURL, blob)
	fmt.Printf("%s/base64/%s/absences.html\n", blobBaseURL, blob)
	return nil
}
