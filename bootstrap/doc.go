// Package bootstrap runs a command's components for the length of one task.
//
// An App validates its typed configuration, initializes the global logger,
// starts registered components in order, runs the task, and stops the
// components again in reverse order, also when the task fails or the
// process is interrupted.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(dbComponent)
//	app.RegisterComponent(factoryComponent)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return factoryComponent.Factory().Prepare(ctx)
//	})
package bootstrap
