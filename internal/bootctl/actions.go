package bootctl

// Indirection layer to allow stubbing in tests

var (
	fnLoadManifest = loadManifest
	fnRunCmd       = RunCmd

	fnInstallRepos = installRepos
	fnInstallEnv   = installEnv
	fnInstallDeps  = installDeps

	fnStage        = stageAll
	fnPatchT4      = patchT4
	fnPatchRestore = patchRestore
	fnRunInference = runInference
	fnVerify       = verifyAll
	fnPrintEnv     = printActivateEnv
)
