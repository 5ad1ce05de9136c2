package main

import (
	"fmt"
	"log"
	"os"

	logsvc "github.com/trezcool/mahudhurio/services/logger"
	smssvc "github.com/trezcool/mahudhurio/services/sms"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/storage/csv"
	"github.com/trezcool/mahudhurio/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up the attendance store
	var store attendance.Store
	switch conf.Attendance.Backend {
	case "postgres":
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()
		store = database.NewAttendanceStore(db)
	default:
		store = csvstore.NewStore(conf.Attendance.File)
	}

	var sms core.SMSService
	if conf.Debug {
		sms = smssvc.NewConsoleService(conf)
	} else {
		sms = smssvc.NewTwilioService(conf, svcLogger)
	}
	svc, err := attendance.NewService(store, sms, svcLogger, conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		svc:   svc,
		store: store,
		out:   os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
