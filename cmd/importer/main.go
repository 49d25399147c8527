package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Josepmarimon/bau-assist-sub000/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/config"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/database"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/logger"
)

func main() {
	csvPath := flag.String("csv", "", "timetable csv to import")
	semesterID := flag.String("semester", "", "target semester id (overrides IMPORT_SEMESTER_ID)")
	skipChecks := flag.Bool("skip-conflict-check", false, "bypass classroom and student group gates")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("usage: importer -csv timetable.csv [-semester <id>] [-skip-conflict-check]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	target := cfg.Importer.SemesterID
	if *semesterID != "" {
		target = *semesterID
	}
	if target == "" {
		logr.Sugar().Fatalw("no target semester configured")
	}
	skip := cfg.Importer.SkipConflictCheck || *skipChecks

	timeSlots := repository.NewTimeSlotRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	bookings := repository.NewBookingRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	semesters := repository.NewSemesterRepository(db)
	subjects := repository.NewSubjectRepository(db)
	studentGroups := repository.NewStudentGroupRepository(db)
	teachers := repository.NewTeacherRepository(db)

	conflictService := service.NewConflictService(bookings, timeSlots, teachers, nil, logr)
	bookingService := service.NewBookingService(assignments, timeSlots, semesters, subjects,
		studentGroups, classrooms, teachers, conflictService, nil, nil, nil, nil, logr)

	aliases := map[string]string{}
	if cfg.Importer.AliasesPath != "" {
		f, err := os.Open(cfg.Importer.AliasesPath)
		if err != nil {
			logr.Sugar().Fatalw("failed to open alias table", "path", cfg.Importer.AliasesPath, "error", err)
		}
		aliases, err = service.LoadAliases(f)
		f.Close()
		if err != nil {
			logr.Sugar().Fatalw("failed to parse alias table", "error", err)
		}
	}

	importer := service.NewImportService(bookingService, subjects, classrooms, studentGroups,
		target, skip, aliases, logr)

	f, err := os.Open(*csvPath)
	if err != nil {
		logr.Sugar().Fatalw("failed to open csv", "path", *csvPath, "error", err)
	}
	defer f.Close()

	summary, err := importer.Run(context.Background(), f)
	if err != nil {
		logr.Sugar().Fatalw("import failed", "error", err)
	}

	for _, row := range summary.Rows {
		if row.Error != "" {
			logr.Sugar().Warnw("row skipped", "line", row.Line, "error", row.Error)
		}
	}
	logr.Sugar().Infow("import complete",
		"total", summary.Total, "imported", summary.Imported, "failed", summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
