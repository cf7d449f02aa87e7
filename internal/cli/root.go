package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	var err error
	switch args[0] {
	case "download":
		err = runDownload(args[1:])
	case "batch":
		err = runBatch(args[1:])
	case "settings":
		err = runSettings(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	return err
}

func printRootUsage() {
	fmt.Println("hanime-downloader: concurrent HLS episode downloader for hanime.tv")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  hanime-downloader download <url>")
	fmt.Println("  hanime-downloader batch --file URLs.txt")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  download  download one episode (or a whole franchise with --all-episodes)")
	fmt.Println("  batch     download every URL listed in a file, one job per URL")
	fmt.Println("  settings  show/update persisted runtime settings")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Flags override the settings file, which overrides built-in defaults")
}
