package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/eduspace/backend/apps/api/echo"
	"github.com/eduspace/backend/core"
	"github.com/eduspace/backend/core/chat"
	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
	emailsvc "github.com/eduspace/backend/services/email"
	logsvc "github.com/eduspace/backend/services/logger"
	filesvc "github.com/eduspace/backend/services/storage"
	"github.com/eduspace/backend/storage/database"
	mongorepos "github.com/eduspace/backend/storage/database/mongo"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up logger
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer database.Close(context.Background(), db) // nolint

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var files core.FileStorage
	if conf.Debug {
		files = filesvc.NewDummyStorage()
	} else {
		files, err = filesvc.NewB2Storage(ctx, conf)
		if err != nil {
			logger.Fatal("setting up file storage", err)
		}
	}

	usrRepo := mongorepos.NewUserRepository(db)
	crsRepo := mongorepos.NewCourseRepository(db)
	chatRepo := mongorepos.NewChatRepository(db)

	usrSvc := user.NewService(conf, usrRepo, mailSvc, files, logger)
	crsSvc := course.NewService(conf, crsRepo, usrSvc, mailSvc, files, logger)
	chatSvc := chat.NewService(chatRepo, crsSvc)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Conf:      conf,
		Logger:    logger,
		Shutdown:  shutdown,
		UserSvc:   usrSvc,
		CourseSvc: crsSvc,
		ChatSvc:   chatSvc,
	})
	go app.Start()

	<-shutdown
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("stopping server", err)
	}
}
