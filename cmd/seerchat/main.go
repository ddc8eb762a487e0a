package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/config"
	"github.com/City-Bureau/seerchat/pkg/locale"
	"github.com/City-Bureau/seerchat/pkg/outbox"
	"github.com/City-Bureau/seerchat/pkg/pane"
	"github.com/City-Bureau/seerchat/pkg/selection"
	"github.com/City-Bureau/seerchat/pkg/svc"
	"github.com/City-Bureau/seerchat/pkg/tui"
)

func persister(cfg *config.Config) (selection.Persister, func(), error) {
	switch cfg.StateBackend {
	case config.StatePostgres:
		db, err := gorm.Open("postgres", cfg.RDS.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := selection.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("could not migrate selections: %w", err)
		}
		return &selection.GormPersister{DB: db}, func() { db.Close() }, nil
	case config.StateS3:
		client := s3.New(session.New())
		return &selection.S3Persister{Client: client, Bucket: cfg.S3Bucket}, func() {}, nil
	}
	return selection.NopPersister{}, func() {}, nil
}

func notifiers(cfg *config.Config) svc.Notifiers {
	var out svc.Notifiers
	if cfg.NotifyBell {
		out = append(out, &svc.BellNotifier{Out: os.Stderr})
	}
	if cfg.SNSTopicArn != "" && cfg.AlertPhoneNumber != "" {
		out = append(out, &svc.SNSNotifier{
			Client:   svc.NewSNSClient(),
			TopicArn: cfg.SNSTopicArn,
			To:       cfg.AlertPhoneNumber,
			Language: cfg.Language,
		})
	}
	return out
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "seerchat")
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := cfg.Identity()
	backend, err := svc.NewBackendClient(cfg.APIURL, cfg.APIToken, identity)
	if err != nil {
		return err
	}
	if identity.Type == "" {
		me, err := backend.Me(ctx)
		if err != nil {
			return fmt.Errorf("could not load account: %w", err)
		}
		identity.Type = me.Type()
		backend.SetIdentity(identity)
	}

	statePersister, closeState, err := persister(cfg)
	if err != nil {
		return err
	}
	defer closeState()
	store := selection.Open(ctx, statePersister, cfg.UserID.String())
	if identity.ActingSeer != nil {
		store.SetActingSeer(identity.ActingSeer)
	} else if seer := store.Current().ActingSeer; seer != nil && identity.Type == chat.Seer {
		identity.ActingSeer = seer
		backend.SetIdentity(identity)
	}

	localizer := locale.LoadLocalizer(cfg.Language)
	viewport := tui.NewLineViewport(identity, localizer, time.Local)

	var program *tea.Program
	conversation := pane.New(backend, viewport, identity, tui.LineConfig(cfg.Pane),
		pane.WithNotifier(notifiers(cfg)),
		pane.WithOnChange(func(state pane.State) {
			program.Send(tui.StateMsg(state))
		}),
	)
	sender := outbox.New(backend, conversation, identity.Type)

	actingSeer := identity.ActingSeer
	unsubscribe := store.Subscribe(func(sel selection.Selection) {
		if sel.ActingSeer != nil && (actingSeer == nil || sel.ActingSeer.ID != actingSeer.ID) {
			actingSeer = sel.ActingSeer
			identity.ActingSeer = sel.ActingSeer
			backend.SetIdentity(identity)
			viewport.SetIdentity(identity)
			conversation.SetIdentity(identity)
		}
		conversation.SetParticipant(sel.Counterpart)
	})
	defer unsubscribe()

	program = tea.NewProgram(tui.NewModel(tui.Deps{
		Conversation: conversation,
		Viewport:     viewport,
		Sender:       sender,
		Directory:    backend,
		Plans:        backend,
		Goals:        backend,
		Store:        store,
		Localizer:    localizer,
		UserType:     identity.Type,
		DeepLinkID:   cfg.DeepLinkID,
	}), tea.WithAltScreen())

	paneDone := make(chan error, 1)
	go func() { paneDone <- conversation.Run(ctx) }()
	if counterpart := store.Current().Counterpart; counterpart != nil {
		conversation.SetParticipant(counterpart)
	}

	_, runErr := program.Run()
	cancel()
	if err := <-paneDone; err != nil && err != context.Canceled {
		log.Printf("Conversation stopped: %v", err)
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err := store.Close(saveCtx); err != nil {
		log.Printf("Could not save selection: %v", err)
	}
	return runErr
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
