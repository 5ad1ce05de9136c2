package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

var (
	nowFunc = time.Now // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc   *attendance.Service
	store attendance.Store
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seed -file FILE - enroll students from a roster CSV (student_id,card_id,name,phone)")
	fmt.Fprintln(cli.out, "  sweep           - mark students without a scan today as absent")
	fmt.Fprintln(cli.out, "  roster          - print the enrolled students")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedFile := seedCmd.String("file", "", "Path to a roster CSV with columns student_id,card_id,name,phone.")

	switch args[1] {
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)
	case "sweep":
		return cli.sweep()
	case "roster":
		return cli.roster()
	default:
		cli.printUsage()
		return errHelp
	}
}

// seed appends a master row for every student in the file that is not
// enrolled yet; student IDs already on the roster are skipped.
func (cli *commandLine) seed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	students, err := parseRosterFile(f)
	if err != nil {
		return err
	}

	records, err := cli.store.LoadRecords()
	if err != nil {
		return errors.Wrap(err, "loading attendance table")
	}
	roster := attendance.BuildRoster(records)

	var added int
	for _, stu := range students {
		if _, ok := roster.ByStudentID(stu.StudentID); ok {
			fmt.Fprintf(cli.out, "skipping %s (%s): already enrolled\n", stu.Name, stu.StudentID)
			continue
		}
		records = append(records, attendance.Record{
			StudentID: stu.StudentID,
			CardID:    stu.CardID,
			Name:      stu.Name,
			Phone:     stu.Phone,
		})
		added++
	}
	if added > 0 {
		if err = cli.store.SaveRecords(records); err != nil {
			return errors.Wrap(err, "saving attendance table")
		}
	}
	fmt.Fprintf(cli.out, "enrolled %d student(s)\n", added)
	return nil
}

func (cli *commandLine) sweep() error {
	res, err := cli.svc.Sweep(nowFunc())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "marked %d student(s) absent (SMS sent: %d, skipped: %d, failed: %d)\n",
		len(res.Marked), res.Delivery.Sent, res.Delivery.Skipped, res.Delivery.Failed)
	return nil
}

func (cli *commandLine) roster() error {
	roster, err := cli.svc.Roster()
	if err != nil {
		return err
	}
	for _, stu := range roster.Students() {
		fmt.Fprintf(cli.out, "%s\t%s\t%s\t%s\n", stu.StudentID, stu.CardID, stu.Name, stu.Phone)
	}
	fmt.Fprintf(cli.out, "%d student(s) enrolled\n", roster.Len())
	return nil
}

func parseRosterFile(r io.Reader) ([]attendance.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "reading roster header")
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range []string{"student_id", "card_id", "name"} {
		if _, ok := idx[col]; !ok {
			return nil, errors.Errorf("roster file must have a %s column", col)
		}
	}

	var students []attendance.Student
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "reading roster file")
		}
		students = append(students, attendance.Student{
			StudentID: cell(row, idx, "student_id"),
			CardID:    attendance.NormalizeCardID(cell(row, idx, "card_id")),
			Name:      cell(row, idx, "name"),
			Phone:     cell(row, idx, "phone"),
		})
	}
	return students, nil
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
