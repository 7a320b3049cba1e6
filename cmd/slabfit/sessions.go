package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/slabfit/go-slabfit/store"
)

func sessionsCmd(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	dbPath := fs.String("db", "", "Session database (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: slabfit sessions --db sessions.db [session-id]

List stored fit and sampling sessions, or show one session's parameter
snapshot when an ID is given.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		fs.Usage()
		return fmt.Errorf("--db required")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if fs.NArg() > 0 {
		return showSession(db, fs.Arg(0))
	}
	return listSessions(db)
}

func listSessions(db *store.Store) error {
	sessions, err := db.Sessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}
	fmt.Printf("%-36s  %-6s  %-19s  %s\n", "ID", "KIND", "CREATED", "NAME")
	for _, s := range sessions {
		fmt.Printf("%-36s  %-6s  %-19s  %s\n",
			s.ID, s.Kind, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Name)
	}
	return nil
}

func showSession(db *store.Store, id string) error {
	sess, err := db.Session(id)
	if err != nil {
		return err
	}

	fmt.Printf("session %s (%s)\n", sess.ID, sess.Kind)
	fmt.Printf("  name: %s\n", sess.Name)
	fmt.Printf("  seed: %d\n", sess.Seed)
	fmt.Printf("  created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
	if sess.FinishedAt == nil {
		fmt.Println("  unfinished")
	} else {
		switch sess.Kind {
		case store.KindFit:
			status := "stopped"
			if sess.Converged {
				status = "converged"
			}
			fmt.Printf("  cost %.6g, %s after %d generations, %d evaluations\n",
				sess.Cost, status, sess.Generations, sess.Evaluations)
		case store.KindSample:
			fmt.Printf("  %d samples, acceptance %.2f\n", sess.Samples, sess.Acceptance)
		}
	}

	params, err := db.Parameters(id)
	if err != nil {
		return err
	}
	for _, p := range params {
		if p.Vary {
			fmt.Printf("  %-28s %12.6g  [%g, %g]\n", p.Name, p.Value, p.Low, p.High)
		} else {
			fmt.Printf("  %-28s %12.6g  (fixed)\n", p.Name, p.Value)
		}
	}
	return nil
}
