package trainer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/go_func_utils"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	waitGroup    sync.WaitGroup
	logger       logrus.FieldLogger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       logrus.FieldLogger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		logger:       args.Logger,
	}

	args.UIViewImpl.Initialize(args.UIController)
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)
	args.UIViewImpl.SetMode(args.UIModel.GetUIState().Mode)

	go_func_utils.SafeGoWait(&base.waitGroup, base.logger, "ui-log-resize", base.monitorLogResize)
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// listenAndDraw forwards every value of a model event to apply on its own goroutine and
// redraws afterwards
func listenAndDraw[T any](base *BaseUIView, name string, listen func(chan T) func(), apply func(T)) {
	ch := make(chan T, 1)
	unregister := listen(ch)
	go_func_utils.SafeGoWait(&base.waitGroup, base.logger, name, func() {
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case value, ok := <-ch:
				if !ok {
					return
				}
				apply(value)
				base.draw()
			}
		}
	})
}

func (base *BaseUIView) setupEventListeners() {
	listenAndDraw(base, "ui-log", base.uiModel.ListenToLog, func(string) {
		base.updateLogDisplay()
	})
	listenAndDraw(base, "ui-state", base.uiModel.ListenToUIState, func(state UIState) {
		base.uiViewImpl.SetMode(state.Mode)
	})
	listenAndDraw(base, "ui-workout-list", base.uiModel.ListenToWorkoutList, base.uiViewImpl.SetWorkoutList)
	listenAndDraw(base, "ui-coach-state", base.uiModel.ListenToCoachState, base.uiViewImpl.UpdateCoachState)
	listenAndDraw(base, "ui-set-view", base.uiModel.ListenToSetView, base.uiViewImpl.UpdateSetView)
	listenAndDraw(base, "ui-rest", base.uiModel.ListenToRest, base.uiViewImpl.UpdateRest)
	listenAndDraw(base, "ui-scoreboard", base.uiModel.ListenToScoreboard, base.uiViewImpl.UpdateScoreboard)

	// Close application stops the view once
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.uiModel.ListenToCloseApplication(closeChan)
	go_func_utils.SafeGoWait(&base.waitGroup, base.logger, "ui-close", func() {
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.uiViewImpl.Stop()
		}
	})
}

func (base *BaseUIView) draw() {
	if err := base.uiViewImpl.Draw(); err != nil {
		base.logger.Errorf("BaseUIView: Error drawing: %v", err)
	}
}

func (base *BaseUIView) updateLogDisplay() {
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	logLines := base.uiModel.GetLogTail(height)

	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Errorf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				base.draw()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Debugf("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Debugf("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
